package models

import (
	"database/sql"
	"time"
)

// ROITransaction - неизменяемая запись аудита об одном ежедневном начислении
// ROI по стейку.
// ROITransaction is an immutable audit record of one daily ROI payout.
type ROITransaction struct {
	TransactionID   string    `json:"transaction_id"`
	UserID          string    `json:"user_id"`
	StakeID         string    `json:"stake_id"`
	Amount          float64   `json:"amount"`
	ROIPercentage   float64   `json:"roi_percentage"`
	AutoDistributed bool      `json:"auto_distributed"`
	CreatedAt       time.Time `json:"created_at"`
}

// Deposit - заявка на пополнение. Средства зачисляются только после
// подтверждения администратором.
type Deposit struct {
	DepositID       string         `json:"deposit_id"`
	UserID          string         `json:"user_id"`
	Amount          float64        `json:"amount"`
	PaymentMethod   string         `json:"payment_method"`
	TransactionHash sql.NullString `json:"transaction_hash"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	ApprovedAt      sql.NullTime   `json:"approved_at"`
	ApprovedBy      sql.NullString `json:"approved_by"`
	RejectionReason sql.NullString `json:"rejection_reason"`
}

// Withdrawal - заявка на вывод. Баланс списывается при создании заявки и
// возвращается при отклонении. WalletAddress содержит расшифрованный адрес;
// в БД хранится только шифртекст.
type Withdrawal struct {
	WithdrawalID    string         `json:"withdrawal_id"`
	UserID          string         `json:"user_id"`
	Amount          float64        `json:"amount"`
	WalletAddress   string         `json:"wallet_address"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	ApprovedAt      sql.NullTime   `json:"approved_at"`
	ApprovedBy      sql.NullString `json:"approved_by"`
	TransactionHash sql.NullString `json:"transaction_hash"`
	RejectionReason sql.NullString `json:"rejection_reason"`
}
