package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/enum"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/ethutil"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// LedgerDomain is the token-service surface: accounts create, mint, move,
// associate and approve tokens the way the host ledger does. The lotto
// domains sit on top of the same book-keeping.
type LedgerDomain interface {
	CreateToken(context.Context, *model.CreateTokenRequest) (*model.CreateTokenResponse, error)
	MintTokenTo(context.Context, *model.MintTokenRequest) (*model.MintTokenResponse, error)
	Transfer(context.Context, *model.TransferTokenRequest) (*model.TransferTokenResponse, error)
	Associate(context.Context, *model.AssociateTokenRequest) (*model.AssociateTokenResponse, error)
	Approve(context.Context, *model.ApproveTokenRequest) (*model.ApproveTokenResponse, error)
	ApproveNFT(context.Context, *model.ApproveNFTRequest) (*model.ApproveNFTResponse, error)
	AddDelegation(context.Context, *model.AddDelegationRequest) (*model.AddDelegationResponse, error)
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GetNFTOwner(context.Context, *model.GetNFTOwnerRequest) (*model.GetNFTOwnerResponse, error)
}

type ledgerDomain struct {
	ledgerRepo repository.LedgerRepository
}

func NewLedgerDomain(ledgerRepo repository.LedgerRepository) *ledgerDomain {
	return &ledgerDomain{ledgerRepo: ledgerRepo}
}

func (d *ledgerDomain) CreateToken(
	ctx context.Context, req *model.CreateTokenRequest,
) (*model.CreateTokenResponse, error) {
	tokenType, err := enum.ToEnum[entity.TokenType](req.Type)
	if err != nil {
		return nil, errorx.New(errorx.BadParameters, "Invalid token type %s", req.Type)
	}

	if req.Name == "" || req.Symbol == "" {
		return nil, errorx.New(errorx.BadParameters, "Token name and symbol must not be empty")
	}

	if req.Supply < 0 || req.Decimals < 0 {
		return nil, errorx.New(errorx.BadParameters, "Invalid supply or decimals")
	}

	caller := xcontext.RequestUserID(ctx)
	treasury := req.Treasury
	if treasury == "" {
		treasury = caller
	}

	address, err := ethutil.NewRandomAddress()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate token address: %v", err)
		return nil, errorx.Unknown
	}

	royalties := make(entity.Array[entity.Royalty], 0, len(req.Royalty))
	for _, royalty := range req.Royalty {
		royalties = append(royalties, entity.Royalty{Recipient: royalty.Recipient, Bps: royalty.Bps})
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	class := &entity.TokenClass{
		Base:      entity.Base{ID: uuid.NewString()},
		Address:   address,
		Type:      tokenType,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Memo:      req.Memo,
		Decimals:  int64(req.Decimals),
		Treasury:  treasury,
		Royalties: royalties,
	}

	if tokenType == entity.TokenTypeFungible {
		class.TotalSupply = req.Supply
	}

	if err := d.ledgerRepo.CreateTokenClass(ctx, class); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create token class: %v", err)
		return nil, errorx.Unknown
	}

	// The treasury holds the initial fungible supply.
	if tokenType == entity.TokenTypeFungible && req.Supply > 0 {
		if err := d.ledgerRepo.AddBalance(ctx, treasury, class.Address, req.Supply); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot credit treasury: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.CreateTokenResponse{Address: class.Address}, nil
}

func (d *ledgerDomain) MintTokenTo(
	ctx context.Context, req *model.MintTokenRequest,
) (*model.MintTokenResponse, error) {
	class, err := d.ledgerRepo.GetTokenClass(ctx, req.Token)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Unknown token %s", req.Token)
	}

	caller := xcontext.RequestUserID(ctx)
	if class.Treasury != caller {
		return nil, errorx.New(errorx.NotAuthorized, "Only the treasury can mint")
	}

	receiver := req.Receiver
	if receiver == "" {
		receiver = caller
	}

	if receiver != class.Treasury {
		associated, err := d.ledgerRepo.HasAssociation(ctx, receiver, req.Token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
			return nil, errorx.Unknown
		}

		if !associated {
			return nil, errorx.New(errorx.AssociationFailed,
				"Receiver is not associated with %s", req.Token)
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if class.Type == entity.TokenTypeFungible {
		if req.Amount <= 0 {
			return nil, errorx.New(errorx.BadParameters, "Amount must be positive")
		}

		if err := d.ledgerRepo.AddSupply(ctx, req.Token, req.Amount); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add supply: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.ledgerRepo.AddBalance(ctx, receiver, req.Token, req.Amount); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot credit receiver: %v", err)
			return nil, errorx.Unknown
		}

		xcontext.WithCommitDBTransaction(ctx)
		return &model.MintTokenResponse{}, nil
	}

	if len(req.MetadataCIDs) == 0 {
		return nil, errorx.New(errorx.BadParameters, "No metadata to mint")
	}

	serials := make([]int64, 0, len(req.MetadataCIDs))
	for _, cid := range req.MetadataCIDs {
		serial, err := d.ledgerRepo.NextSerial(ctx, req.Token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reserve serial: %v", err)
			return nil, errorx.New(errorx.FailedNFTMintAndSend, "Cannot mint %s", req.Token)
		}

		err = d.ledgerRepo.CreateSerial(ctx, &entity.NFTSerial{
			Base:        entity.Base{ID: uuid.NewString()},
			Token:       req.Token,
			Serial:      serial,
			Owner:       receiver,
			MetadataCID: cid,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create serial: %v", err)
			return nil, errorx.New(errorx.FailedNFTMintAndSend, "Cannot mint %s", req.Token)
		}

		if err := d.ledgerRepo.AddSupply(ctx, req.Token, 1); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add supply: %v", err)
			return nil, errorx.Unknown
		}

		serials = append(serials, serial)
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.MintTokenResponse{Serials: serials}, nil
}

func (d *ledgerDomain) Transfer(
	ctx context.Context, req *model.TransferTokenRequest,
) (*model.TransferTokenResponse, error) {
	caller := xcontext.RequestUserID(ctx)
	if req.Receiver == "" {
		return nil, errorx.New(errorx.BadParameters, "Receiver must not be empty")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if req.Serial > 0 {
		serial, err := d.ledgerRepo.GetSerial(ctx, req.Token, req.Serial)
		if err != nil {
			return nil, errorx.New(errorx.NotFound, "Unknown serial %d of %s", req.Serial, req.Token)
		}

		if serial.Owner != caller {
			return nil, errorx.New(errorx.NotAuthorized, "Serial %d is not yours", req.Serial)
		}

		associated, err := d.ledgerRepo.HasAssociation(ctx, req.Receiver, req.Token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
			return nil, errorx.Unknown
		}

		if !associated {
			return nil, errorx.New(errorx.AssociationFailed,
				"Receiver is not associated with %s", req.Token)
		}

		if err := d.ledgerRepo.UpdateSerialOwner(ctx, req.Token, req.Serial, caller, req.Receiver); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot move serial: %v", err)
			return nil, errorx.Unknown
		}

		xcontext.WithCommitDBTransaction(ctx)
		return &model.TransferTokenResponse{}, nil
	}

	if req.Amount <= 0 {
		return nil, errorx.New(errorx.BadParameters, "Amount must be positive")
	}

	if !entity.IsHbar(req.Token) {
		associated, err := d.ledgerRepo.HasAssociation(ctx, req.Receiver, req.Token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
			return nil, errorx.Unknown
		}

		if !associated {
			return nil, errorx.New(errorx.AssociationFailed,
				"Receiver is not associated with %s", req.Token)
		}
	}

	if err := d.ledgerRepo.SubBalance(ctx, caller, req.Token, req.Amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if entity.IsHbar(req.Token) {
				return nil, errorx.New(errorx.NotEnoughHbar, "Not enough hbar")
			}

			return nil, errorx.New(errorx.NotEnoughFungible, "Not enough %s", req.Token)
		}

		xcontext.Logger(ctx).Errorf("Cannot debit sender: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.ledgerRepo.AddBalance(ctx, req.Receiver, req.Token, req.Amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit receiver: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.TransferTokenResponse{}, nil
}

func (d *ledgerDomain) Associate(
	ctx context.Context, req *model.AssociateTokenRequest,
) (*model.AssociateTokenResponse, error) {
	if _, err := d.ledgerRepo.GetTokenClass(ctx, req.Token); err != nil {
		return nil, errorx.New(errorx.NotFound, "Unknown token %s", req.Token)
	}

	caller := xcontext.RequestUserID(ctx)
	associated, err := d.ledgerRepo.HasAssociation(ctx, caller, req.Token)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
		return nil, errorx.Unknown
	}

	if associated {
		return &model.AssociateTokenResponse{}, nil
	}

	if err := d.ledgerRepo.CreateAssociation(ctx, caller, req.Token); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create association: %v", err)
		return nil, errorx.New(errorx.AssociationFailed, "Cannot associate with %s", req.Token)
	}

	return &model.AssociateTokenResponse{}, nil
}

func (d *ledgerDomain) Approve(
	ctx context.Context, req *model.ApproveTokenRequest,
) (*model.ApproveTokenResponse, error) {
	if req.Spender == "" || req.Amount < 0 {
		return nil, errorx.New(errorx.BadParameters, "Invalid spender or amount")
	}

	err := d.ledgerRepo.UpsertAllowance(ctx, &entity.TokenAllowance{
		Base:    entity.Base{ID: uuid.NewString()},
		Owner:   xcontext.RequestUserID(ctx),
		Spender: req.Spender,
		Token:   req.Token,
		Amount:  req.Amount,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert allowance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ApproveTokenResponse{}, nil
}

func (d *ledgerDomain) ApproveNFT(
	ctx context.Context, req *model.ApproveNFTRequest,
) (*model.ApproveNFTResponse, error) {
	if req.Spender == "" {
		return nil, errorx.New(errorx.BadParameters, "Spender must not be empty")
	}

	err := d.ledgerRepo.UpsertAllowance(ctx, &entity.TokenAllowance{
		Base:       entity.Base{ID: uuid.NewString()},
		Owner:      xcontext.RequestUserID(ctx),
		Spender:    req.Spender,
		Token:      req.Token,
		ApproveAll: req.ApproveAll,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert nft allowance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ApproveNFTResponse{}, nil
}

func (d *ledgerDomain) AddDelegation(
	ctx context.Context, req *model.AddDelegationRequest,
) (*model.AddDelegationResponse, error) {
	if req.Delegate == "" {
		return nil, errorx.New(errorx.BadParameters, "Delegate must not be empty")
	}

	if req.Serial < 0 {
		return nil, errorx.New(errorx.BadParameters, "Invalid serial")
	}

	err := d.ledgerRepo.CreateDelegation(ctx, &entity.Delegation{
		Base:     entity.Base{ID: uuid.NewString()},
		Owner:    xcontext.RequestUserID(ctx),
		Delegate: req.Delegate,
		Token:    req.Token,
		Serial:   req.Serial,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create delegation: %v", err)
		return nil, errorx.Unknown
	}

	return &model.AddDelegationResponse{}, nil
}

func (d *ledgerDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	account := req.Account
	if account == "" {
		account = xcontext.RequestUserID(ctx)
	}

	amount, err := d.ledgerRepo.GetBalance(ctx, account, req.Token)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetBalanceResponse{Amount: amount}, nil
}

func (d *ledgerDomain) GetNFTOwner(
	ctx context.Context, req *model.GetNFTOwnerRequest,
) (*model.GetNFTOwnerResponse, error) {
	serial, err := d.ledgerRepo.GetSerial(ctx, req.Token, req.Serial)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Unknown serial %d of %s", req.Serial, req.Token)
	}

	return &model.GetNFTOwnerResponse{Owner: serial.Owner}, nil
}
