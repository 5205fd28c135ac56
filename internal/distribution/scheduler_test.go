package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/notify"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestScheduler(store *fakeStore, notifier notify.Notifier) *Scheduler {
	d := &Distributor{Store: store, Notifier: notifier}
	s := NewScheduler(store, d, notifier)
	s.now = func() time.Time { return testNow }
	s.runHour = 0
	s.runMinute = 5
	return s
}

func activeStake(id, userID, packageID string, amount, dailyROI float64, end time.Time) models.Stake {
	return models.Stake{
		StakeID:      id,
		UserID:       userID,
		PackageID:    packageID,
		Amount:       amount,
		DailyROI:     dailyROI,
		DurationDays: 365,
		StartDate:    end.AddDate(-1, 0, 0),
		EndDate:      end,
		Status:       constants.STAKE_STATUS_ACTIVE,
	}
}

func TestRunDistributionCycleROI(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "u1", Email: "u1@example.com", Level: 1})
	store.addPackage(models.InvestmentPackage{PackageID: "pkg-gold", Name: "Gold", Level: 3})
	store.addStake(activeStake("s1", "u1", "pkg-gold", 1000, 2.5, testNow.AddDate(0, 0, 30)))

	notifier := &recordingNotifier{}
	s := newTestScheduler(store, notifier)

	summary, err := s.RunDistributionCycle()
	require.NoError(t, err)

	require.Equal(t, 1, summary.StakesProcessed)
	require.InDelta(t, 25.0, summary.TotalROIDistributed, 1e-9)
	require.Zero(t, summary.StakesCompleted)
	require.Equal(t, 1, summary.UsersNotified)

	// $25 зачислено и на кошелек, и на счетчик ROI.
	user, _ := store.GetUserByID("u1")
	require.InDelta(t, 25.0, user.WalletBalance, 1e-9)
	require.InDelta(t, 25.0, user.ROIBalance, 1e-9)

	require.Len(t, store.roiTransactions, 1)
	tx := store.roiTransactions[0]
	require.Equal(t, "u1", tx.UserID)
	require.Equal(t, "s1", tx.StakeID)
	require.InDelta(t, 25.0, tx.Amount, 1e-9)
	require.InDelta(t, 2.5, tx.ROIPercentage, 1e-9)
	require.True(t, tx.AutoDistributed)

	require.InDelta(t, 25.0, store.stakes["s1"].TotalEarned, 1e-9)

	require.Len(t, store.logs, 1)
	require.Equal(t, constants.LOG_TYPE_AUTO_ROI_DISTRIBUTION, store.logs[0].Type)
	require.Equal(t, "success", store.logs[0].Status)

	roiEvents := notifier.byType(constants.EVENT_ROI_PAID)
	require.Len(t, roiEvents, 1)
	require.Equal(t, "Gold", roiEvents[0].PackageName)
	require.Len(t, notifier.byType(constants.EVENT_CYCLE_SUMMARY), 1)
}

func TestRunDistributionCycleMaturity(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "u1", Level: 1})
	store.addStake(activeStake("s1", "u1", "pkg-1", 500, 2.0, testNow.AddDate(0, 0, -1)))

	notifier := &recordingNotifier{}
	s := newTestScheduler(store, notifier)

	summary, err := s.RunDistributionCycle()
	require.NoError(t, err)

	// Созревший стейк завершается с возвратом капитала; ROI за этот цикл
	// не начисляется.
	require.Equal(t, 1, summary.StakesCompleted)
	require.Zero(t, summary.StakesProcessed)
	require.Zero(t, summary.TotalROIDistributed)

	user, _ := store.GetUserByID("u1")
	require.InDelta(t, 500.0, user.WalletBalance, 1e-9)
	require.Zero(t, user.ROIBalance)

	require.Equal(t, constants.STAKE_STATUS_COMPLETED, store.stakes["s1"].Status)
	require.True(t, store.stakes["s1"].CapitalReturned)
	require.Empty(t, store.roiTransactions)
	require.Len(t, notifier.byType(constants.EVENT_STAKE_COMPLETED), 1)
}

func TestRunDistributionCycleMaturityExactlyOnce(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "u1", Level: 1})
	stake := activeStake("s1", "u1", "pkg-1", 500, 2.0, testNow.AddDate(0, 0, -1))
	// Капитал уже возвращен ранее, но статус по какой-то причине остался
	// активным: повторного возврата быть не должно.
	stake.CapitalReturned = true
	store.addStake(stake)

	s := newTestScheduler(store, notify.Nop{})
	summary, err := s.RunDistributionCycle()
	require.NoError(t, err)

	require.Zero(t, summary.StakesCompleted)
	user, _ := store.GetUserByID("u1")
	require.Zero(t, user.WalletBalance)
}

func TestRunDistributionCycleMaturityBoundary(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "u1", Level: 1})
	// Дата окончания ровно сейчас: стейк считается созревшим.
	store.addStake(activeStake("s1", "u1", "pkg-1", 300, 1.5, testNow))

	s := newTestScheduler(store, notify.Nop{})
	summary, err := s.RunDistributionCycle()
	require.NoError(t, err)
	require.Equal(t, 1, summary.StakesCompleted)
}

func TestRunDistributionCycleSkipsInertStakes(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "u1", Level: 1})
	store.addStake(activeStake("s1", "u1", "pkg-1", 1000, 0, testNow.AddDate(0, 0, 30)))

	s := newTestScheduler(store, notify.Nop{})
	summary, err := s.RunDistributionCycle()
	require.NoError(t, err)

	require.Zero(t, summary.StakesProcessed)
	require.Empty(t, store.roiTransactions)
	// Пустой прогон все равно журналируется.
	require.Len(t, store.logs, 1)
}

func TestRunDistributionCycleStoreDown(t *testing.T) {
	store := newFakeStore()
	store.failActiveStakes = true

	s := newTestScheduler(store, notify.Nop{})
	_, err := s.RunDistributionCycle()
	require.Error(t, err)
	require.Empty(t, store.logs)
}

func TestRunDistributionCycleIsolatesStakeFailure(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "u1", Level: 1})
	// Владелец второго стейка отсутствует: начисление ему падает, но
	// первый стейк обрабатывается.
	store.addStake(activeStake("s1", "u1", "pkg-1", 1000, 2.0, testNow.AddDate(0, 0, 30)))
	store.addStake(activeStake("s2", "ghost", "pkg-1", 1000, 2.0, testNow.AddDate(0, 0, 30)))

	s := newTestScheduler(store, notify.Nop{})
	summary, err := s.RunDistributionCycle()
	require.NoError(t, err)

	user, _ := store.GetUserByID("u1")
	require.InDelta(t, 20.0, user.WalletBalance, 1e-9)
	require.GreaterOrEqual(t, summary.StakesProcessed, 1)
}

func TestRunDistributionCycleWithProfitShare(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "staker", Level: 1, ReferredBy: refBy("r1")})
	store.addUser(models.User{UserID: "r1", Level: 2, ReferredBy: refBy("r2")})
	store.addUser(models.User{UserID: "r2", Level: 2})
	store.addPackage(models.InvestmentPackage{
		PackageID: "pkg-silver", Name: "Silver", Level: 2,
		ProfitShare:   [models.MaxReferralDepth]float64{0, 5, 2},
		EnabledLevels: allDepths(),
	})
	store.addStake(activeStake("s1", "staker", "pkg-silver", 1000, 2.0, testNow.AddDate(0, 0, 30)))

	s := newTestScheduler(store, notify.Nop{})
	_, err := s.RunDistributionCycle()
	require.NoError(t, err)

	// ROI $20; r2 на глубине 2 получает 5% от него, r1 на глубине 1 - ничего.
	r1, _ := store.GetUserByID("r1")
	require.Zero(t, r1.CommissionBalance)
	r2, _ := store.GetUserByID("r2")
	require.InDelta(t, 1.0, r2.CommissionBalance, 1e-9)
}

func TestCalculateNextRun(t *testing.T) {
	s := &Scheduler{runHour: 0, runMinute: 5}

	// Время запуска сегодня уже прошло: следующий запуск завтра.
	next := s.calculateNextRun(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2025, 3, 11, 0, 5, 0, 0, time.UTC), next)

	// Время запуска сегодня еще впереди.
	next = s.calculateNextRun(time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC))
	require.Equal(t, time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC), next)

	// Ровно в момент запуска считаем, что тик уже отработал.
	next = s.calculateNextRun(time.Date(2025, 3, 10, 0, 5, 0, 0, time.UTC))
	require.Equal(t, time.Date(2025, 3, 11, 0, 5, 0, 0, time.UTC), next)
}

func TestSchedulerStatus(t *testing.T) {
	store := newFakeStore()
	s := newTestScheduler(store, notify.Nop{})

	status := s.Status()
	require.False(t, status.IsRunning)
	require.Empty(t, status.LastRun)

	_, err := s.RunDistributionCycle()
	require.NoError(t, err)

	status = s.Status()
	require.NotEmpty(t, status.LastRun)
	require.NotEmpty(t, status.NextRun)
}
