package models

import (
	"database/sql"
	"time"
)

// MaxReferralDepth - максимальная глубина реферального дерева, учитываемая
// платформой. Глубина 1 - прямые рефералы, глубины 2-6 - команда.
// MaxReferralDepth is the maximum referral tree depth the platform tracks.
const MaxReferralDepth = 6

// User represents a platform user with all balance fields.
// Балансы независимы: wallet_balance - доступные средства,
// roi_balance и commission_balance - накопительные счетчики начислений.
// ReferredBy - user_id пригласившего, NULL только у корневого пользователя;
// DirectReferrals поддерживает только добавление.
type User struct {
	UserID            string         `json:"user_id"`
	Email             string         `json:"email"`
	FullName          string         `json:"full_name"`
	PasswordHash      string         `json:"-"`
	Role              string         `json:"role"`
	Level             int            `json:"level"`
	TotalInvestment   float64        `json:"total_investment"`
	WalletBalance     float64        `json:"wallet_balance"`
	ROIBalance        float64        `json:"roi_balance"`
	CommissionBalance float64        `json:"commission_balance"`
	ReferralCode      string         `json:"referral_code"`
	ReferredBy        sql.NullString `json:"referred_by"`
	DirectReferrals   []string       `json:"direct_referrals"`
	CreatedAt         time.Time      `json:"created_at"`
	LastROIDate       sql.NullTime   `json:"last_roi_date"`
	IsActive          bool           `json:"is_active"`
}

// DashboardStats - сводка для личного кабинета пользователя.
type DashboardStats struct {
	TotalBalance          float64                `json:"total_balance"`
	ROIBalance            float64                `json:"roi_balance"`
	CommissionBalance     float64                `json:"commission_balance"`
	TotalInvestment       float64                `json:"total_investment"`
	CurrentLevel          int                    `json:"current_level"`
	DailyROIPercentage    float64                `json:"daily_roi_percentage"`
	TeamCountsByLevel     map[string]int         `json:"team_counts_by_level"`
	TotalCommissions      float64                `json:"total_commissions"`
	PendingWithdrawals    int                    `json:"pending_withdrawals"`
	NextLevelRequirements *NextLevelRequirements `json:"next_level_requirements,omitempty"`
	PromotionProgress     *PromotionProgress     `json:"promotion_progress,omitempty"`
}

// NextLevelRequirements - требования следующего уровня для прогресса повышения.
type NextLevelRequirements struct {
	Level         int                   `json:"level"`
	MinInvestment float64               `json:"min_investment"`
	TeamRequired  [MaxReferralDepth]int `json:"team_required"`
}

// PromotionProgress - выполнение требований следующего уровня.
type PromotionProgress struct {
	InvestmentMet bool `json:"investment_met"`
	DirectMet     bool `json:"direct_met"`
	TeamMet       bool `json:"team_met"`
}

// AdminDashboardStats - агрегированная статистика для панели администратора.
type AdminDashboardStats struct {
	TotalUsers           int     `json:"total_users"`
	TotalDeposits        float64 `json:"total_deposits"`
	TotalWithdrawals     float64 `json:"total_withdrawals"`
	PendingDeposits      int     `json:"pending_deposits"`
	PendingWithdrawals   int     `json:"pending_withdrawals"`
	TotalActiveStakes    int     `json:"total_active_stakes"`
	TotalCommissionsPaid float64 `json:"total_commissions_paid"`
	TotalROIPaid         float64 `json:"total_roi_paid"`
}
