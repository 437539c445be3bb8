package model

type AddAdminRequest struct {
	Address string `json:"address"`
}

type AddAdminResponse struct{}

type RemoveAdminRequest struct {
	Address string `json:"address"`
}

type RemoveAdminResponse struct{}

type RenounceAdminRequest struct{}

type RenounceAdminResponse struct{}

type ListAdminsRequest struct{}

type ListAdminsResponse struct {
	Admins []string `json:"admins"`
}

type PauseContractRequest struct{}

type PauseContractResponse struct{}

type UnpauseContractRequest struct{}

type UnpauseContractResponse struct{}

type TransferHbarRequest struct {
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
}

type TransferHbarResponse struct{}

type TransferFungibleRequest struct {
	Token    string `json:"token"`
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
}

type TransferFungibleResponse struct{}

type GetContractStateRequest struct{}

type GetContractStateResponse struct {
	Paused             bool  `json:"paused"`
	CreationFeeHbar    int64 `json:"creation_fee_hbar"`
	CreationFeeLazy    int64 `json:"creation_fee_lazy"`
	PlatformPercentage int64 `json:"platform_percentage"`
	BurnPercentageBps  int64 `json:"burn_percentage_bps"`
}
