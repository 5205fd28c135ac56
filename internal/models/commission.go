package models

import "time"

// Commission - неизменяемая запись аудита об одной комиссионной выплате.
// UserID - получатель (аплайн), FromUserID - источник (стейкер/вкладчик).
// Depth - реферальная дистанция 1-6, SourceType - constants.COMMISSION_SOURCE_*.
// Commission is an immutable audit record of one commission payout.
type Commission struct {
	CommissionID string    `json:"commission_id"`
	UserID       string    `json:"user_id"`
	FromUserID   string    `json:"from_user_id"`
	Amount       float64   `json:"amount"`
	Percentage   float64   `json:"percentage"`
	Depth        int       `json:"depth"`
	SourceType   string    `json:"source_type"`
	StakeID      string    `json:"stake_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommissionSummary - агрегат комиссий получателя по глубинам.
type CommissionSummary struct {
	ByDepth [MaxReferralDepth]float64 `json:"by_depth"`
	Total   float64                   `json:"total"`
}
