package constants

// Роли пользователей
// User roles
const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// Статусы депозитов
// Deposit statuses
const (
	DEPOSIT_STATUS_PENDING  = "pending"
	DEPOSIT_STATUS_APPROVED = "approved"
	DEPOSIT_STATUS_REJECTED = "rejected"
)

// Статусы заявок на вывод средств
// Withdrawal statuses
const (
	WITHDRAWAL_STATUS_PENDING  = "pending"
	WITHDRAWAL_STATUS_APPROVED = "approved"
	WITHDRAWAL_STATUS_REJECTED = "rejected"
)

// Статусы стейкинга
// Staking statuses
const (
	STAKE_STATUS_ACTIVE    = "active"
	STAKE_STATUS_COMPLETED = "completed"
)

// Способы оплаты депозита
// Deposit payment methods
const (
	PAYMENT_METHOD_USDT = "usdt"
	PAYMENT_METHOD_BANK = "bank"
)

// Типы комиссионных начислений.
// deposit_commission - прямая комиссия пригласившему (глубина 1) при стейкинге.
// roi_profit_share - доля прибыли аплайна (глубины 2-6) от ежедневного ROI.
// Commission source types.
const (
	COMMISSION_SOURCE_DEPOSIT      = "deposit_commission"
	COMMISSION_SOURCE_PROFIT_SHARE = "roi_profit_share"
)

// Типы системных журналов
// System log types
const (
	LOG_TYPE_AUTO_ROI_DISTRIBUTION = "auto_roi_distribution"
)

// Типы событий для уведомлений
// Notification event types
const (
	EVENT_ROI_PAID        = "roi_paid"
	EVENT_COMMISSION_PAID = "commission_paid"
	EVENT_STAKE_COMPLETED = "stake_completed"
	EVENT_DEPOSIT_PENDING = "deposit_pending"
	EVENT_CYCLE_SUMMARY   = "cycle_summary"
)

// Реферальный код корневого (административного) пользователя.
// Referral code of the root (admin) user.
const ADMIN_REFERRAL_CODE = "ADMIN001"
