package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/repository"
)

const (
	ContractAddress  = "0xc000000000000000000000000000000000000001"
	LazyTokenAddress = "0x1a27000000000000000000000000000000000001"

	Admin1 = "0xad00000000000000000000000000000000000001"
	Admin2 = "0xad00000000000000000000000000000000000002"
	User1  = "0x0000000000000000000000000000000000001001"
	User2  = "0x0000000000000000000000000000000000001002"
)

func InsertLedgerClasses(ctx context.Context) {
	ledgerRepo := repository.NewLedgerRepository()

	err := ledgerRepo.CreateTokenClass(ctx, &entity.TokenClass{
		Base:     entity.Base{ID: uuid.NewString()},
		Address:  entity.HbarAddress,
		Type:     entity.TokenTypeFungible,
		Name:     "hbar",
		Symbol:   "HBAR",
		Decimals: 8,
	})
	if err != nil {
		panic(err)
	}

	err = ledgerRepo.CreateTokenClass(ctx, &entity.TokenClass{
		Base:     entity.Base{ID: uuid.NewString()},
		Address:  LazyTokenAddress,
		Type:     entity.TokenTypeFungible,
		Name:     "Lazy",
		Symbol:   "LAZY",
		Decimals: 1,
		Treasury: ContractAddress,
	})
	if err != nil {
		panic(err)
	}
}

func InsertContractState(ctx context.Context) {
	stateRepo := repository.NewContractStateRepository()

	err := stateRepo.Create(ctx, &entity.ContractState{
		SnowFlakeBase:      entity.SnowFlakeBase{ID: entity.ContractStateID},
		CreationFeeHbar:    100,
		CreationFeeLazy:    50,
		PlatformPercentage: 5,
	})
	if err != nil {
		panic(err)
	}
}

func InsertAdmins(ctx context.Context) {
	adminRepo := repository.NewAdminRepository()

	for _, address := range []string{Admin1, Admin2} {
		err := adminRepo.Create(ctx, &entity.Admin{
			Base:    entity.Base{ID: uuid.NewString()},
			Address: address,
		})
		if err != nil {
			panic(err)
		}
	}
}

// FundAccount credits an account directly on the ledger, bypassing transfer
// checks.
func FundAccount(ctx context.Context, account, token string, amount int64) {
	ledgerRepo := repository.NewLedgerRepository()

	if !entity.IsHbar(token) {
		if err := ledgerRepo.CreateAssociation(ctx, account, token); err != nil {
			panic(err)
		}
	}

	if err := ledgerRepo.AddBalance(ctx, account, token, amount); err != nil {
		panic(err)
	}
}

// ApproveSpending grants the contract a fungible allowance from the owner.
func ApproveSpending(ctx context.Context, owner, token string, amount int64) {
	ledgerRepo := repository.NewLedgerRepository()

	err := ledgerRepo.UpsertAllowance(ctx, &entity.TokenAllowance{
		Base:    entity.Base{ID: uuid.NewString()},
		Owner:   owner,
		Spender: ContractAddress,
		Token:   token,
		Amount:  amount,
	})
	if err != nil {
		panic(err)
	}
}

// ApproveNFTs grants the contract an approve-for-all on a collection.
func ApproveNFTs(ctx context.Context, owner, token string) {
	ledgerRepo := repository.NewLedgerRepository()

	err := ledgerRepo.UpsertAllowance(ctx, &entity.TokenAllowance{
		Base:       entity.Base{ID: uuid.NewString()},
		Owner:      owner,
		Spender:    ContractAddress,
		Token:      token,
		ApproveAll: true,
	})
	if err != nil {
		panic(err)
	}
}

// InsertNFTCollection creates a non-fungible class and mints the given number
// of serials to the owner.
func InsertNFTCollection(ctx context.Context, address, owner string, count int64) {
	ledgerRepo := repository.NewLedgerRepository()

	err := ledgerRepo.CreateTokenClass(ctx, &entity.TokenClass{
		Base:     entity.Base{ID: uuid.NewString()},
		Address:  address,
		Type:     entity.TokenTypeNonFungible,
		Name:     "Collection",
		Symbol:   "NFT",
		Treasury: owner,
	})
	if err != nil {
		panic(err)
	}

	if err := ledgerRepo.CreateAssociation(ctx, owner, address); err != nil {
		panic(err)
	}

	for i := int64(0); i < count; i++ {
		serial, err := ledgerRepo.NextSerial(ctx, address)
		if err != nil {
			panic(err)
		}

		err = ledgerRepo.CreateSerial(ctx, &entity.NFTSerial{
			Base:   entity.Base{ID: uuid.NewString()},
			Token:  address,
			Serial: serial,
			Owner:  owner,
		})
		if err != nil {
			panic(err)
		}

		if err := ledgerRepo.AddSupply(ctx, address, 1); err != nil {
			panic(err)
		}
	}
}

// Associate records a token association for the account.
func Associate(ctx context.Context, account, token string) {
	ledgerRepo := repository.NewLedgerRepository()
	if err := ledgerRepo.CreateAssociation(ctx, account, token); err != nil {
		panic(err)
	}
}
