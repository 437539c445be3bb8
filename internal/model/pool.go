package model

import "time"

type CreatePoolRequest struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Memo      string `json:"memo"`
	TicketCID string `json:"ticket_cid"`
	WinCID    string `json:"win_cid"`

	WinRateThreshold int64  `json:"win_rate_threshold"`
	EntryFee         int64  `json:"entry_fee"`
	FeeToken         string `json:"fee_token"`

	Royalties []Royalty `json:"royalties"`

	Duration   time.Duration `json:"duration"`
	MinEntries int64         `json:"min_entries"`
	MaxEntries int64         `json:"max_entries"`

	MaxTicketsPerBuy  int64 `json:"max_tickets_per_buy"`
	MaxTicketsPerUser int64 `json:"max_tickets_per_user"`

	// PayableAmount is the native value attached to the call; community
	// creators pay the hbar creation fee with it.
	PayableAmount int64 `json:"payable_amount"`
}

type CreatePoolResponse struct {
	PoolID      int64  `json:"pool_id"`
	TicketToken string `json:"ticket_token"`
}

type GetPoolRequest struct {
	PoolID int64 `json:"pool_id" form:"pool_id"`
}

type GetPoolResponse struct {
	Pool Pool `json:"pool"`
}

type PausePoolRequest struct {
	PoolID int64 `json:"pool_id"`
}

type PausePoolResponse struct{}

type UnpausePoolRequest struct {
	PoolID int64 `json:"pool_id"`
}

type UnpausePoolResponse struct{}

type ClosePoolRequest struct {
	PoolID int64 `json:"pool_id"`
}

type ClosePoolResponse struct{}

type SetPoolEntryCapsRequest struct {
	PoolID            int64 `json:"pool_id"`
	MaxTicketsPerBuy  int64 `json:"max_tickets_per_buy"`
	MaxTicketsPerUser int64 `json:"max_tickets_per_user"`
}

type SetPoolEntryCapsResponse struct{}
