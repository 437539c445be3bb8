package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer APIServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Kafka     KafkaConfigs
	Lotto     LottoConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type APIServerConfigs struct {
	Host         string
	Port         string
	Cert         string
	Key          string
	MaxLimit     int
	DefaultLimit int
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Secret     string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string
}

// LottoConfigs carries the economics of the lotto deployment.
type LottoConfigs struct {
	// ContractAddress is the escrow account holding entry fees and prize
	// deposits until settlement.
	ContractAddress string

	// LazyToken is the fungible token used for creation fees and the
	// balance-threshold bonus.
	LazyToken string

	// MaxPlatformPercentage caps the platform share of community pool
	// proceeds.
	MaxPlatformPercentage int64

	// MirrorLag is the visibility delay of the eventually-consistent read
	// path.
	MirrorLag time.Duration

	// InitialAdmin is seeded by the migration on a fresh database.
	InitialAdmin string

	EventTopic string
}
