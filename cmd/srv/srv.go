package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lazy-lotto/backend/config"
	"github.com/lazy-lotto/backend/internal/client"
	"github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/domain"
	"github.com/lazy-lotto/backend/internal/mirror"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/authenticator"
	"github.com/lazy-lotto/backend/pkg/kafka"
	"github.com/lazy-lotto/backend/pkg/logger"
	"github.com/lazy-lotto/backend/pkg/pubsub"
	redisutil "github.com/lazy-lotto/backend/pkg/redis"
	"github.com/lazy-lotto/backend/pkg/router"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	db          *gorm.DB
	redisClient redisutil.Client
	publisher   pubsub.Publisher

	poolRepo     repository.PoolRepository
	entryRepo    repository.EntryRepository
	prizeRepo    repository.PrizeRepository
	pendingRepo  repository.PendingPrizeRepository
	ledgerRepo   repository.LedgerRepository
	adminRepo    repository.AdminRepository
	stateRepo    repository.ContractStateRepository
	bonusRepo    repository.BonusRepository
	proceedsRepo repository.ProceedsRepository

	poolDomain    domain.PoolDomain
	entryDomain   domain.EntryDomain
	rollDomain    domain.RollDomain
	prizeDomain   domain.PrizeDomain
	claimDomain   domain.ClaimDomain
	bonusDomain   domain.BonusDomain
	managerDomain domain.ManagerDomain
	adminDomain   domain.AdminDomain
	ledgerDomain  domain.LedgerDomain

	mirrorReader mirror.Reader
	refresher    *mirror.Refresher

	router *router.Router
	server *http.Server
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func (s *srv) loadConfig() {
	s.configs = &config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "mysql"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "lotto"),
			Password: getEnv("MYSQL_PASSWORD", "lotto"),
			Database: getEnv("MYSQL_DATABASE", "lotto"),
		},
		ApiServer: config.APIServerConfigs{
			Host:         getEnv("API_HOST", "localhost"),
			Port:         getEnv("API_PORT", "8080"),
			MaxLimit:     getEnvAsInt("API_MAX_LIMIT", 50),
			DefaultLimit: getEnvAsInt("API_DEFAULT_LIMIT", 10),
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token_secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     getEnv("TOKEN_SECRET", "token_secret"),
				Expiration: getEnvAsDuration("ACCESS_TOKEN_DURATION", time.Hour),
			},
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr: getEnv("KAFKA_ADDR", "localhost:9092"),
		},
		Lotto: config.LottoConfigs{
			ContractAddress:       getEnv("LOTTO_CONTRACT_ADDRESS", ""),
			LazyToken:             getEnv("LOTTO_LAZY_TOKEN", ""),
			MaxPlatformPercentage: int64(getEnvAsInt("LOTTO_MAX_PLATFORM_PERCENTAGE", 25)),
			MirrorLag:             getEnvAsDuration("LOTTO_MIRROR_LAG", 5*time.Second),
			InitialAdmin:          getEnv("LOTTO_INITIAL_ADMIN", ""),
			EventTopic:            getEnv("LOTTO_EVENT_TOPIC", "lotto-events"),
		},
	}
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger()
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRedis() {
	s.redisClient = redisutil.NewClient(s.configs.Redis.Addr)
}

func (s *srv) loadPublisher() {
	s.publisher = kafka.NewPublisher("lotto-api", []string{s.configs.Kafka.Addr})
}

// loadBaseContext wires everything loaded so far into one context. Every
// request context is derived from it.
func (s *srv) loadBaseContext() {
	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithTokenEngine(ctx,
		authenticator.NewTokenEngine[model.AccessToken](s.configs.Auth.AccessToken))

	if s.db != nil {
		ctx = xcontext.WithDB(ctx, s.db)
	}

	if s.publisher != nil {
		ctx = xcontext.WithPublisher(ctx, s.publisher)
	}

	s.ctx = ctx
}

func (s *srv) loadRepos() {
	s.poolRepo = repository.NewPoolRepository()
	s.entryRepo = repository.NewEntryRepository()
	s.prizeRepo = repository.NewPrizeRepository()
	s.pendingRepo = repository.NewPendingPrizeRepository()
	s.ledgerRepo = repository.NewLedgerRepository()
	s.adminRepo = repository.NewAdminRepository()
	s.stateRepo = repository.NewContractStateRepository()
	s.bonusRepo = repository.NewBonusRepository()
	s.proceedsRepo = repository.NewProceedsRepository()
}

func (s *srv) loadDomains() {
	adminVerifier := common.NewAdminVerifier(s.adminRepo)
	prizeVerifier := common.NewPrizeManagerVerifier(s.adminRepo, s.poolRepo, s.stateRepo)
	locker := common.NewPoolLocker()

	delegates := client.NewDelegateRegistry(s.ledgerRepo)
	engine := domain.NewBonusEngine(s.bonusRepo, s.stateRepo, s.ledgerRepo, delegates)
	settler := domain.NewSettler(
		s.poolRepo, s.entryRepo, s.prizeRepo, s.pendingRepo,
		engine, client.NewHashPRNG(), locker,
	)

	s.poolDomain = domain.NewPoolDomain(
		s.poolRepo, s.adminRepo, s.stateRepo, s.ledgerRepo, s.proceedsRepo, adminVerifier)
	s.entryDomain = domain.NewEntryDomain(settler, s.ledgerRepo, s.proceedsRepo, s.stateRepo)
	s.rollDomain = domain.NewRollDomain(settler, s.ledgerRepo, s.stateRepo, adminVerifier)
	s.prizeDomain = domain.NewPrizeDomain(
		s.poolRepo, s.prizeRepo, s.ledgerRepo, prizeVerifier, locker)
	s.claimDomain = domain.NewClaimDomain(
		s.poolRepo, s.pendingRepo, s.ledgerRepo, s.stateRepo, delegates,
		common.NewQueueLocker())
	s.bonusDomain = domain.NewBonusDomain(
		engine, s.poolRepo, s.bonusRepo, s.stateRepo, adminVerifier)
	s.managerDomain = domain.NewManagerDomain(
		s.poolRepo, s.adminRepo, s.stateRepo, s.proceedsRepo, s.ledgerRepo, adminVerifier)
	s.adminDomain = domain.NewAdminDomain(s.adminRepo, s.stateRepo, s.ledgerRepo, adminVerifier)
	s.ledgerDomain = domain.NewLedgerDomain(s.ledgerRepo)
}
