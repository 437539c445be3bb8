package model

// AccessToken is the object carried inside a JWT access token.
type AccessToken struct {
	Address string `json:"address"`
}

// Event is the payload published to the event topic for every state change
// observable on the contract surface.
type Event struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// PrizePackage is the wire form of one atomic payout.
type PrizePackage struct {
	Token      string    `json:"token" mapstructure:"token"`
	Amount     int64     `json:"amount" mapstructure:"amount"`
	NFTTokens  []string  `json:"nft_tokens" mapstructure:"nft_tokens"`
	NFTSerials [][]int64 `json:"nft_serials" mapstructure:"nft_serials"`
}

// PendingPrize is the wire form of one queued win.
type PendingPrize struct {
	PoolID       int64        `json:"pool_id"`
	Position     int64        `json:"position"`
	Prize        PrizePackage `json:"prize"`
	AsNFT        bool         `json:"as_nft"`
	BearerToken  string       `json:"bearer_token,omitempty"`
	BearerSerial int64        `json:"bearer_serial,omitempty"`
}

type Royalty struct {
	Recipient string `json:"recipient"`
	Bps       int64  `json:"bps"`
}

type Pool struct {
	PoolID           int64     `json:"pool_id"`
	Name             string    `json:"name"`
	Symbol           string    `json:"symbol"`
	Memo             string    `json:"memo"`
	TicketCID        string    `json:"ticket_cid"`
	WinCID           string    `json:"win_cid"`
	WinRateThreshold int64     `json:"win_rate_threshold"`
	EntryFee         int64     `json:"entry_fee"`
	FeeToken         string    `json:"fee_token"`
	TicketToken      string    `json:"ticket_token"`
	Royalties        []Royalty `json:"royalties"`
	Paused           bool      `json:"paused"`
	Closed           bool      `json:"closed"`
	IsGlobal         bool      `json:"is_global"`
	Owner            string    `json:"owner"`
	PrizeManager     string    `json:"prize_manager,omitempty"`

	PlatformPercentage    int64 `json:"platform_percentage"`
	MaxTicketsPerBuy      int64 `json:"max_tickets_per_buy"`
	MaxTicketsPerUser     int64 `json:"max_tickets_per_user"`
	OutstandingEntries    int64 `json:"outstanding_entries"`
	OutstandingTicketNFTs int64 `json:"outstanding_ticket_nfts"`
	PrizeCount            int64 `json:"prize_count"`
}
