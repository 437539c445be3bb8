package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/lazy-lotto/backend/internal/middleware"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/pkg/router"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedis()
	s.loadPublisher()
	s.loadBaseContext()
	s.loadRepos()
	s.loadDomains()
	s.loadMirror()
	s.loadRouter()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: cors.AllowAll().Handler(s.router.Handler()),
	}

	log.Printf("Starting server on port: %s\n", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Use(middleware.Logger())

	// Read API, no authentication needed.
	publicRouter := s.router.Branch()
	{
		router.GET(publicRouter, "/getPool", s.poolDomain.GetPool)
		router.GET(publicRouter, "/getGlobalPools", s.managerDomain.GetGlobalPools)
		router.GET(publicRouter, "/getCommunityPools", s.managerDomain.GetCommunityPools)
		router.GET(publicRouter, "/getUserPools", s.managerDomain.GetUserPools)
		router.GET(publicRouter, "/getPrizes", s.prizeDomain.GetPrizes)
		router.GET(publicRouter, "/getUserEntries", s.entryDomain.GetUserEntries)
		router.GET(publicRouter, "/getPendingPrizes", s.claimDomain.GetPendingPrizes)
		router.GET(publicRouter, "/getPendingPrize", s.claimDomain.GetPendingPrize)
		router.GET(publicRouter, "/getPendingPrizeByNFT", s.claimDomain.GetPendingPrizeByNFT)
		router.GET(publicRouter, "/calculateBoost", s.bonusDomain.CalculateBoost)
		router.GET(publicRouter, "/getBonusConfig", s.bonusDomain.GetBonusConfig)
		router.GET(publicRouter, "/getContractState", s.adminDomain.GetContractState)
		router.GET(publicRouter, "/listAdmins", s.adminDomain.ListAdmins)
		router.GET(publicRouter, "/canAddPrizes", s.managerDomain.CanAddPrizes)
		router.GET(publicRouter, "/getBalance", s.ledgerDomain.GetBalance)
		router.GET(publicRouter, "/getNFTOwner", s.ledgerDomain.GetNFTOwner)

		// Mirror read API, answered from the redis snapshot.
		router.GET(publicRouter, "/mirror/getPool", s.mirrorGetPool)
		router.GET(publicRouter, "/mirror/getBalance", s.mirrorGetBalance)
		router.GET(publicRouter, "/mirror/getNFTOwner", s.mirrorGetNFTOwner)
	}

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Use(middleware.Authenticate())
	{
		// Pool API
		router.POST(authRouter, "/createPool", s.poolDomain.CreatePool)
		router.POST(authRouter, "/pausePool", s.poolDomain.PausePool)
		router.POST(authRouter, "/unpausePool", s.poolDomain.UnpausePool)
		router.POST(authRouter, "/closePool", s.poolDomain.ClosePool)
		router.POST(authRouter, "/setPoolEntryCaps", s.poolDomain.SetPoolEntryCaps)

		// Entry API
		router.POST(authRouter, "/buyEntry", s.entryDomain.BuyEntry)
		router.POST(authRouter, "/buyAndRollEntry", s.entryDomain.BuyAndRollEntry)
		router.POST(authRouter, "/buyAndRedeemEntry", s.entryDomain.BuyAndRedeemEntry)
		router.POST(authRouter, "/redeemEntriesToNFT", s.entryDomain.RedeemEntriesToNFT)

		// Roll API
		router.POST(authRouter, "/rollAll", s.rollDomain.RollAll)
		router.POST(authRouter, "/rollBatch", s.rollDomain.RollBatch)
		router.POST(authRouter, "/rollWithNFT", s.rollDomain.RollWithNFT)
		router.POST(authRouter, "/setPrng", s.rollDomain.SetPRNG)

		// Prize API
		router.POST(authRouter, "/addPrizePackage", s.prizeDomain.AddPrizePackage)
		router.POST(authRouter, "/addMultipleFungiblePrizes", s.prizeDomain.AddMultipleFungiblePrizes)
		router.POST(authRouter, "/removePrizes", s.prizeDomain.RemovePrizes)

		// Claim API
		router.POST(authRouter, "/claimPrize", s.claimDomain.ClaimPrize)
		router.POST(authRouter, "/claimAllPrizes", s.claimDomain.ClaimAllPrizes)
		router.POST(authRouter, "/redeemPrizeToNFT", s.claimDomain.RedeemPrizeToNFT)
		router.POST(authRouter, "/claimPrizeFromNFT", s.claimDomain.ClaimPrizeFromNFT)

		// Bonus API
		router.POST(authRouter, "/setBurnPercentage", s.bonusDomain.SetBurnPercentage)
		router.POST(authRouter, "/setLazyBalanceBonus", s.bonusDomain.SetLazyBalanceBonus)
		router.POST(authRouter, "/setNFTBonus", s.bonusDomain.SetNFTBonus)
		router.POST(authRouter, "/removeNFTBonus", s.bonusDomain.RemoveNFTBonus)
		router.POST(authRouter, "/addTimeBonus", s.bonusDomain.AddTimeBonus)
		router.POST(authRouter, "/removeTimeBonus", s.bonusDomain.RemoveTimeBonus)

		// Manager API
		router.POST(authRouter, "/setCreationFees", s.managerDomain.SetCreationFees)
		router.POST(authRouter, "/setPlatformPercentage", s.managerDomain.SetPlatformPercentage)
		router.POST(authRouter, "/withdrawPoolProceeds", s.managerDomain.WithdrawPoolProceeds)
		router.POST(authRouter, "/withdrawPlatformFees", s.managerDomain.WithdrawPlatformFees)
		router.POST(authRouter, "/setPoolPrizeManager", s.managerDomain.SetPoolPrizeManager)
		router.POST(authRouter, "/addGlobalPrizeManager", s.managerDomain.AddGlobalPrizeManager)
		router.POST(authRouter, "/removeGlobalPrizeManager", s.managerDomain.RemoveGlobalPrizeManager)
		router.POST(authRouter, "/transferPoolOwnership", s.managerDomain.TransferPoolOwnership)

		// Admin API
		router.POST(authRouter, "/addAdmin", s.adminDomain.AddAdmin)
		router.POST(authRouter, "/removeAdmin", s.adminDomain.RemoveAdmin)
		router.POST(authRouter, "/renounceAdmin", s.adminDomain.RenounceAdmin)
		router.POST(authRouter, "/pauseContract", s.adminDomain.Pause)
		router.POST(authRouter, "/unpauseContract", s.adminDomain.Unpause)
		router.POST(authRouter, "/transferHbar", s.adminDomain.TransferHbar)
		router.POST(authRouter, "/transferFungible", s.adminDomain.TransferFungible)

		// Ledger API
		router.POST(authRouter, "/createToken", s.ledgerDomain.CreateToken)
		router.POST(authRouter, "/mintToken", s.ledgerDomain.MintTokenTo)
		router.POST(authRouter, "/transferToken", s.ledgerDomain.Transfer)
		router.POST(authRouter, "/associateToken", s.ledgerDomain.Associate)
		router.POST(authRouter, "/approveToken", s.ledgerDomain.Approve)
		router.POST(authRouter, "/approveNFT", s.ledgerDomain.ApproveNFT)
		router.POST(authRouter, "/addDelegation", s.ledgerDomain.AddDelegation)
	}
}

func (s *srv) mirrorGetPool(
	ctx context.Context, req *model.GetPoolRequest,
) (*model.GetPoolResponse, error) {
	pool, err := s.mirrorReader.GetPool(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}

	return &model.GetPoolResponse{Pool: *pool}, nil
}

func (s *srv) mirrorGetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	amount, err := s.mirrorReader.GetBalance(ctx, req.Account, req.Token)
	if err != nil {
		return nil, err
	}

	return &model.GetBalanceResponse{Amount: amount}, nil
}

func (s *srv) mirrorGetNFTOwner(
	ctx context.Context, req *model.GetNFTOwnerRequest,
) (*model.GetNFTOwnerResponse, error) {
	owner, err := s.mirrorReader.GetNFTOwner(ctx, req.Token, req.Serial)
	if err != nil {
		return nil, err
	}

	return &model.GetNFTOwnerResponse{Owner: owner}, nil
}
