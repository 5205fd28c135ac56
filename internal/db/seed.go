package db

import (
	"database/sql"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"Minex/internal/constants"
	"Minex/internal/models"
)

// EnsureDefaultData создает корневого администратора и стартовый набор
// пакетов при первом запуске. Корневой пользователь нужен, потому что
// регистрация требует действующий реферальный код: первый реальный
// пользователь привязывается к коду ADMIN001.
// EnsureDefaultData seeds the root admin user and the default package tiers.
func EnsureDefaultData(adminEmail, adminPassword string) error {
	if _, err := GetUserByEmail(adminEmail); err == sql.ErrNoRows {
		hash, errHash := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if errHash != nil {
			return errHash
		}
		admin := models.User{
			UserID:       uuid.NewString(),
			Email:        adminEmail,
			FullName:     "Admin",
			PasswordHash: string(hash),
			Role:         constants.ROLE_ADMIN,
			Level:        models.MaxReferralDepth,
			ReferralCode: constants.ADMIN_REFERRAL_CODE,
			IsActive:     true,
		}
		if errCreate := CreateUser(admin); errCreate != nil {
			return errCreate
		}
		log.Println("Корневой администратор создан.")
	} else if err != nil {
		return err
	}

	count, err := CountPackages()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	allDepths := [models.MaxReferralDepth]bool{true, true, true, true, true, true}
	defaults := []models.InvestmentPackage{
		{
			Name: "Bronze", Level: 1, MinInvestment: 50, MaxInvestment: 499,
			DailyROI: 1.8, AnnualROI: 657, DurationDays: 365,
			EnabledLevels: allDepths, IsActive: true,
		},
		{
			Name: "Silver", Level: 2, MinInvestment: 500, MaxInvestment: 1999,
			DailyROI: 2.1, AnnualROI: 766.5, DurationDays: 365,
			TeamRequired:     [models.MaxReferralDepth]int{3, 4},
			CommissionDirect: 12,
			ProfitShare:      [models.MaxReferralDepth]float64{0, 5, 2},
			EnabledLevels:    allDepths, IsActive: true,
		},
		{
			Name: "Gold", Level: 3, MinInvestment: 2000, MaxInvestment: 4999,
			DailyROI: 2.5, AnnualROI: 912.5, DurationDays: 365,
			TeamRequired:     [models.MaxReferralDepth]int{15, 30},
			CommissionDirect: 13,
			ProfitShare:      [models.MaxReferralDepth]float64{0, 6, 3, 1},
			EnabledLevels:    allDepths, IsActive: true,
		},
		{
			Name: "Platinum", Level: 4, MinInvestment: 5000, MaxInvestment: 9999,
			DailyROI: 3.1, AnnualROI: 1131.5, DurationDays: 365,
			TeamRequired:     [models.MaxReferralDepth]int{30, 60, 60},
			CommissionDirect: 15,
			ProfitShare:      [models.MaxReferralDepth]float64{0, 7, 5, 2, 1},
			EnabledLevels:    allDepths, IsActive: true,
		},
		{
			Name: "Diamond", Level: 5, MinInvestment: 10000, MaxInvestment: 29999,
			DailyROI: 3.7, AnnualROI: 1350.5, DurationDays: 365,
			TeamRequired:     [models.MaxReferralDepth]int{50, 100, 100, 50},
			CommissionDirect: 16,
			ProfitShare:      [models.MaxReferralDepth]float64{0, 8, 7, 3, 2, 1},
			EnabledLevels:    allDepths, IsActive: true,
		},
		{
			Name: "Crown", Level: 6, MinInvestment: 30000, MaxInvestment: 1000000,
			DailyROI: 4.1, AnnualROI: 1496.5, DurationDays: 365,
			TeamRequired:     [models.MaxReferralDepth]int{100, 200, 200, 100, 50},
			CommissionDirect: 18,
			ProfitShare:      [models.MaxReferralDepth]float64{0, 9, 8, 4, 3, 2},
			EnabledLevels:    allDepths, IsActive: true,
		},
	}

	for _, p := range defaults {
		p.PackageID = uuid.NewString()
		if err := CreatePackage(p); err != nil {
			return err
		}
	}
	log.Printf("Создано %d пакетов по умолчанию.", len(defaults))
	return nil
}
