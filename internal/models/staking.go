package models

import (
	"database/sql"
	"time"
)

// Stake - одна запись стейкинга. Процент ежедневного ROI и срок фиксируются
// в момент создания: последующие изменения пакета не влияют на уже открытые
// стейки. CapitalReturned защищает от повторного возврата тела стейка.
// Stake is one staking entry with the daily ROI and duration snapshotted at
// creation time.
type Stake struct {
	StakeID         string       `json:"stake_id"`
	UserID          string       `json:"user_id"`
	PackageID       string       `json:"package_id"`
	Amount          float64      `json:"amount"`
	DailyROI        float64      `json:"daily_roi"`
	DurationDays    int          `json:"duration_days"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	Status          string       `json:"status"` // constants.STAKE_STATUS_*
	TotalEarned     float64      `json:"total_earned"`
	CapitalReturned bool         `json:"capital_returned"`
	LastYieldDate   sql.NullTime `json:"last_yield_date"`
}

// Matured сообщает, истек ли срок стейка на момент now.
func (s Stake) Matured(now time.Time) bool {
	return !now.Before(s.EndDate)
}

// DailyAmount возвращает сумму одного ежедневного начисления ROI.
func (s Stake) DailyAmount() float64 {
	return s.Amount * s.DailyROI / 100
}
