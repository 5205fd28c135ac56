package db

import "Minex/internal/models"

// Store адаптирует пакетные функции db к интерфейсам, которые потребляют
// движок распределения и разрешение реферального дерева. Движок не знает о
// конкретной СУБД: в тестах вместо Store подставляется фальшивое хранилище.
// Store adapts the package-level db functions to the interfaces consumed by
// the distribution engine and the referral tree resolver.
type Store struct{}

func (Store) GetUserByID(userID string) (models.User, error) {
	return GetUserByID(userID)
}

func (Store) GetPackageByLevel(level int) (models.InvestmentPackage, error) {
	return GetPackageByLevel(level)
}

func (Store) GetPackageByID(packageID string) (models.InvestmentPackage, error) {
	return GetPackageByID(packageID)
}

func (Store) ActivePackagesByLevelDesc() ([]models.InvestmentPackage, error) {
	return GetActivePackagesDesc()
}

func (Store) ActiveStakes() ([]models.Stake, error) {
	return GetActiveStakes()
}

func (Store) CompleteStake(stakeID string) (bool, error) {
	return CompleteStake(stakeID)
}

func (Store) AddStakeEarnings(stakeID string, amount float64) error {
	return AddStakeEarnings(stakeID, amount)
}

// CreditWallet зачисляет amount только на wallet_balance (возврат капитала).
func (Store) CreditWallet(userID string, amount float64) error {
	return IncrementUserBalances(userID, amount, 0, 0, 0)
}

// CreditROI зачисляет ежедневный ROI: wallet_balance и roi_balance растут на
// одну и ту же сумму, отметка last_roi_date обновляется.
func (Store) CreditROI(userID string, amount float64) error {
	if err := IncrementUserBalances(userID, amount, amount, 0, 0); err != nil {
		return err
	}
	return SetLastROIDate(userID)
}

// CreditCommission зачисляет комиссию: wallet_balance и commission_balance.
func (Store) CreditCommission(userID string, amount float64) error {
	return IncrementUserBalances(userID, amount, 0, amount, 0)
}

func (Store) InsertROITransaction(t models.ROITransaction) error {
	return InsertROITransaction(t)
}

func (Store) InsertCommission(c models.Commission) error {
	return InsertCommission(c)
}

func (Store) InsertDistributionLog(l models.DistributionLog) error {
	return InsertDistributionLog(l)
}
