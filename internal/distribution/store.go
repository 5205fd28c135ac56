// Пакет distribution содержит движок начислений: прямые комиссии при
// стейкинге, доли прибыли аплайна от ежедневного ROI и планировщик
// ежедневного цикла распределения.
// Package distribution holds the payout engine: direct commissions, upline
// profit shares and the daily ROI scheduler.
package distribution

import "Minex/internal/models"

// Store - операции хранилища, которые потребляет движок. Реализуется
// db.Store поверх PostgreSQL; тесты подставляют хранилище в памяти.
// Балансовые мутации выражены атомарными инкрементами на стороне хранилища,
// а не read-modify-write в приложении. Транзакций между документами нет:
// завершение стейка и возврат капитала - две отдельные записи, разрыв между
// ними самовосстанавливается на следующем цикле (см. CompleteStake).
// Store is the storage contract the engine consumes.
type Store interface {
	GetUserByID(userID string) (models.User, error)
	GetPackageByLevel(level int) (models.InvestmentPackage, error)
	GetPackageByID(packageID string) (models.InvestmentPackage, error)

	ActiveStakes() ([]models.Stake, error)
	// CompleteStake переводит стейк в completed с защитой от повторного
	// возврата капитала; true означает, что переход выполнил именно этот
	// вызов и капитал нужно зачислить.
	CompleteStake(stakeID string) (bool, error)
	AddStakeEarnings(stakeID string, amount float64) error

	CreditWallet(userID string, amount float64) error
	CreditROI(userID string, amount float64) error
	CreditCommission(userID string, amount float64) error

	InsertROITransaction(t models.ROITransaction) error
	InsertCommission(c models.Commission) error
	InsertDistributionLog(l models.DistributionLog) error
}
