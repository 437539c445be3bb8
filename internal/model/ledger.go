package model

type CreateTokenRequest struct {
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Symbol   string    `json:"symbol"`
	Memo     string    `json:"memo"`
	Decimals int       `json:"decimals"`
	Treasury string    `json:"treasury"`
	Supply   int64     `json:"supply"`
	Royalty  []Royalty `json:"royalty"`
}

type CreateTokenResponse struct {
	Address string `json:"address"`
}

type MintTokenRequest struct {
	Token        string   `json:"token"`
	Receiver     string   `json:"receiver"`
	Amount       int64    `json:"amount"`
	MetadataCIDs []string `json:"metadata_cids"`
}

type MintTokenResponse struct {
	Serials []int64 `json:"serials"`
}

type TransferTokenRequest struct {
	Token    string `json:"token"`
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
	Serial   int64  `json:"serial"`
}

type TransferTokenResponse struct{}

type AssociateTokenRequest struct {
	Token string `json:"token"`
}

type AssociateTokenResponse struct{}

type ApproveTokenRequest struct {
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

type ApproveTokenResponse struct{}

type ApproveNFTRequest struct {
	Token      string `json:"token"`
	Spender    string `json:"spender"`
	ApproveAll bool   `json:"approve_all"`
}

type ApproveNFTResponse struct{}

type AddDelegationRequest struct {
	Delegate string `json:"delegate"`
	Token    string `json:"token"`
	Serial   int64  `json:"serial"`
}

type AddDelegationResponse struct{}

type GetBalanceRequest struct {
	Account string `json:"account" form:"account"`
	Token   string `json:"token" form:"token"`
}

type GetBalanceResponse struct {
	Amount int64 `json:"amount"`
}

type GetNFTOwnerRequest struct {
	Token  string `json:"token" form:"token"`
	Serial int64  `json:"serial" form:"serial"`
}

type GetNFTOwnerResponse struct {
	Owner string `json:"owner"`
}
