package entity

import "gorm.io/gorm"

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&TokenClass{},
		&TokenBalance{},
		&NFTSerial{},
		&TokenAllowance{},
		&TokenAssociation{},
		&Delegation{},
		&Pool{},
		&UserEntry{},
		&PrizePackage{},
		&PendingPrize{},
		&ContractState{},
		&Admin{},
		&GlobalPrizeManager{},
		&NFTBonus{},
		&TimeBonus{},
		&PoolProceeds{},
		&PlatformBalance{},
	)
}
