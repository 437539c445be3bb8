package errorx

type Code int

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Access control codes
	NotAdmin      Code = 200001
	NotAuthorized Code = 200002
	LastAdmin     Code = 200003

	// Pool lifecycle codes
	PoolIsClosed              Code = 300001
	PoolOnPause               Code = 300002
	EntriesOutstanding        Code = 300003
	CannotTransferGlobalPools Code = 300004
	LottoPoolNotFound         Code = 300005

	// Payment and parameter codes
	BadParameters     Code = 400001
	IncorrectFeeToken Code = 400002
	InsufficientHbar  Code = 400003
	NotEnoughHbar     Code = 400004
	NotEnoughFungible Code = 400005
	MaxEntriesReached Code = 400006

	// Roll and claim codes
	NoTicketsToRoll        Code = 500001
	NotEnoughTicketsToRoll Code = 500002
	NoPrizesAvailable      Code = 500003
	NoPendingPrizes        Code = 500004
	InvalidPrizeIndex      Code = 500005
	NotWinner              Code = 500006
	AlreadyWinningTicket   Code = 500007
	InvalidTicketNFT       Code = 500008

	// Token plumbing codes
	AssociationFailed           Code = 600001
	FungibleTokenTransferFailed Code = 600002
	FailedNFTCreate             Code = 600003
	FailedNFTMintAndSend        Code = 600004
	FailedNFTWipe               Code = 600005
)
