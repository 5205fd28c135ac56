package distribution

import (
	"fmt"
	"sync"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/notify"
)

// fakeStore - хранилище в памяти для тестов движка распределения.
// Поведение повторяет контракт Store: инкременты атомарны под мьютексом,
// CompleteStake идемпотентен по флагу CapitalReturned.
type fakeStore struct {
	mu sync.Mutex

	users    map[string]models.User
	packages map[int]models.InvestmentPackage
	byID     map[string]models.InvestmentPackage
	stakes   map[string]*models.Stake

	roiTransactions []models.ROITransaction
	commissions     []models.Commission
	logs            []models.DistributionLog

	failActiveStakes bool
	failCredit       bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]models.User{},
		packages: map[int]models.InvestmentPackage{},
		byID:     map[string]models.InvestmentPackage{},
		stakes:   map[string]*models.Stake{},
	}
}

func (f *fakeStore) addUser(u models.User) {
	f.users[u.UserID] = u
}

func (f *fakeStore) addPackage(p models.InvestmentPackage) {
	if p.PackageID == "" {
		p.PackageID = fmt.Sprintf("pkg-%d", p.Level)
	}
	f.packages[p.Level] = p
	f.byID[p.PackageID] = p
}

func (f *fakeStore) addStake(s models.Stake) {
	stake := s
	f.stakes[s.StakeID] = &stake
}

func (f *fakeStore) GetUserByID(userID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("пользователь %s не найден", userID)
	}
	return user, nil
}

func (f *fakeStore) GetPackageByLevel(level int) (models.InvestmentPackage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[level]
	if !ok {
		return models.InvestmentPackage{}, fmt.Errorf("пакет уровня %d не найден", level)
	}
	return pkg, nil
}

func (f *fakeStore) GetPackageByID(packageID string) (models.InvestmentPackage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.byID[packageID]
	if !ok {
		return models.InvestmentPackage{}, fmt.Errorf("пакет %s не найден", packageID)
	}
	return pkg, nil
}

func (f *fakeStore) ActiveStakes() ([]models.Stake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failActiveStakes {
		return nil, fmt.Errorf("хранилище недоступно")
	}
	var out []models.Stake
	for _, s := range f.stakes {
		if s.Status == constants.STAKE_STATUS_ACTIVE {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) CompleteStake(stakeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stake, ok := f.stakes[stakeID]
	if !ok {
		return false, fmt.Errorf("стейк %s не найден", stakeID)
	}
	if stake.CapitalReturned {
		return false, nil
	}
	stake.Status = constants.STAKE_STATUS_COMPLETED
	stake.CapitalReturned = true
	return true, nil
}

func (f *fakeStore) AddStakeEarnings(stakeID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stake, ok := f.stakes[stakeID]
	if !ok {
		return fmt.Errorf("стейк %s не найден", stakeID)
	}
	stake.TotalEarned += amount
	return nil
}

func (f *fakeStore) credit(userID string, wallet, roi, commission float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCredit {
		return fmt.Errorf("зачисление отклонено")
	}
	user, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("пользователь %s не найден", userID)
	}
	user.WalletBalance += wallet
	user.ROIBalance += roi
	user.CommissionBalance += commission
	f.users[userID] = user
	return nil
}

func (f *fakeStore) CreditWallet(userID string, amount float64) error {
	return f.credit(userID, amount, 0, 0)
}

func (f *fakeStore) CreditROI(userID string, amount float64) error {
	return f.credit(userID, amount, amount, 0)
}

func (f *fakeStore) CreditCommission(userID string, amount float64) error {
	return f.credit(userID, amount, 0, amount)
}

func (f *fakeStore) InsertROITransaction(t models.ROITransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roiTransactions = append(f.roiTransactions, t)
	return nil
}

func (f *fakeStore) InsertCommission(c models.Commission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commissions = append(f.commissions, c)
	return nil
}

func (f *fakeStore) InsertDistributionLog(l models.DistributionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

// recordingNotifier накапливает события для проверок.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) byType(eventType string) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Event
	for _, ev := range r.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
