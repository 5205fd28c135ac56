package distribution

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/notify"
)

func refBy(id string) sql.NullString {
	return sql.NullString{String: id, Valid: true}
}

func allDepths() [models.MaxReferralDepth]bool {
	return [models.MaxReferralDepth]bool{true, true, true, true, true, true}
}

func TestPayDirectCommission(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "staker", FullName: "Стейкер", Level: 1, ReferredBy: refBy("ref")})
	store.addUser(models.User{UserID: "ref", Level: 2})
	store.addPackage(models.InvestmentPackage{
		Level: 2, CommissionDirect: 12, EnabledLevels: allDepths(),
	})

	notifier := &recordingNotifier{}
	d := &Distributor{Store: store, Notifier: notifier}

	require.NoError(t, d.PayDirectCommission("stake-1", "staker", 1000))

	// 12% от $1000 = $120 на кошелек и комиссионный счетчик реферера.
	ref, _ := store.GetUserByID("ref")
	require.InDelta(t, 120.0, ref.WalletBalance, 1e-9)
	require.InDelta(t, 120.0, ref.CommissionBalance, 1e-9)

	require.Len(t, store.commissions, 1)
	record := store.commissions[0]
	require.Equal(t, "ref", record.UserID)
	require.Equal(t, "staker", record.FromUserID)
	require.Equal(t, 1, record.Depth)
	require.Equal(t, constants.COMMISSION_SOURCE_DEPOSIT, record.SourceType)
	require.InDelta(t, 120.0, record.Amount, 1e-9)
	require.InDelta(t, 12.0, record.Percentage, 1e-9)

	require.Len(t, notifier.byType(constants.EVENT_COMMISSION_PAID), 1)
}

func TestPayDirectCommissionNoReferrer(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "root", Level: 6})

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayDirectCommission("stake-1", "root", 1000))
	require.Empty(t, store.commissions)
}

func TestPayDirectCommissionRateByReferrerLevel(t *testing.T) {
	// Процент берется из пакета уровня пригласившего, а не стейкера.
	store := newFakeStore()
	store.addUser(models.User{UserID: "staker", Level: 5, ReferredBy: refBy("ref")})
	store.addUser(models.User{UserID: "ref", Level: 1})
	store.addPackage(models.InvestmentPackage{Level: 1, CommissionDirect: 10, EnabledLevels: allDepths()})
	store.addPackage(models.InvestmentPackage{Level: 5, CommissionDirect: 17, EnabledLevels: allDepths()})

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayDirectCommission("stake-1", "staker", 200))

	require.Len(t, store.commissions, 1)
	require.InDelta(t, 20.0, store.commissions[0].Amount, 1e-9)
}

func TestPayDirectCommissionDepthDisabled(t *testing.T) {
	store := newFakeStore()
	store.addUser(models.User{UserID: "staker", Level: 1, ReferredBy: refBy("ref")})
	store.addUser(models.User{UserID: "ref", Level: 2})
	depths := allDepths()
	depths[0] = false
	store.addPackage(models.InvestmentPackage{Level: 2, CommissionDirect: 12, EnabledLevels: depths})

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayDirectCommission("stake-1", "staker", 1000))
	require.Empty(t, store.commissions)
}

func TestPayDirectCommissionInvalidAmount(t *testing.T) {
	d := &Distributor{Store: newFakeStore(), Notifier: notify.Nop{}}
	require.Error(t, d.PayDirectCommission("stake-1", "staker", 0))
	require.Error(t, d.PayDirectCommission("stake-1", "staker", -5))
}

// chainStore строит цепочку staker <- r1 <- r2 <- r3 с пакетами каждого
// уровня получателя.
func chainStore() *fakeStore {
	store := newFakeStore()
	store.addUser(models.User{UserID: "staker", FullName: "Стейкер", Level: 1, ReferredBy: refBy("r1")})
	store.addUser(models.User{UserID: "r1", Level: 2, ReferredBy: refBy("r2")})
	store.addUser(models.User{UserID: "r2", Level: 3, ReferredBy: refBy("r3")})
	store.addUser(models.User{UserID: "r3", Level: 4})
	store.addPackage(models.InvestmentPackage{
		Level: 2, CommissionDirect: 12,
		ProfitShare:   [models.MaxReferralDepth]float64{0, 5, 2},
		EnabledLevels: allDepths(),
	})
	store.addPackage(models.InvestmentPackage{
		Level: 3, CommissionDirect: 14,
		ProfitShare:   [models.MaxReferralDepth]float64{0, 6, 3, 1},
		EnabledLevels: allDepths(),
	})
	store.addPackage(models.InvestmentPackage{
		Level: 4, CommissionDirect: 15,
		ProfitShare:   [models.MaxReferralDepth]float64{0, 7, 4, 2, 1},
		EnabledLevels: allDepths(),
	})
	return store
}

func TestPayProfitShareWalk(t *testing.T) {
	store := chainStore()
	notifier := &recordingNotifier{}
	d := &Distributor{Store: store, Notifier: notifier}

	require.NoError(t, d.PayProfitShare("staker", 100, "stake-1"))

	// r1 на глубине 1 долю прибыли не получает.
	r1, _ := store.GetUserByID("r1")
	require.Zero(t, r1.CommissionBalance)

	// r2 на глубине 2 получает по своему пакету уровня 3: 6% от $100.
	r2, _ := store.GetUserByID("r2")
	require.InDelta(t, 6.0, r2.CommissionBalance, 1e-9)

	// r3 на глубине 3 получает по своему пакету уровня 4: 4% от $100.
	r3, _ := store.GetUserByID("r3")
	require.InDelta(t, 4.0, r3.CommissionBalance, 1e-9)

	require.Len(t, store.commissions, 2)
	for _, c := range store.commissions {
		require.Equal(t, constants.COMMISSION_SOURCE_PROFIT_SHARE, c.SourceType)
		require.Equal(t, "staker", c.FromUserID)
		require.GreaterOrEqual(t, c.Depth, 2)
	}
}

func TestPayProfitShareZeroRateContinuesWalk(t *testing.T) {
	store := chainStore()
	// У r2 нулевой процент на глубине 2: узел пропускается, но обход
	// продолжается выше к r3.
	pkg := store.packages[3]
	pkg.ProfitShare[1] = 0
	store.packages[3] = pkg

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayProfitShare("staker", 100, "stake-1"))

	r2, _ := store.GetUserByID("r2")
	require.Zero(t, r2.CommissionBalance)
	r3, _ := store.GetUserByID("r3")
	require.InDelta(t, 4.0, r3.CommissionBalance, 1e-9)
}

func TestPayProfitShareMissingPackageContinuesWalk(t *testing.T) {
	store := chainStore()
	delete(store.packages, 3) // у r2 нет пакета его уровня

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayProfitShare("staker", 100, "stake-1"))

	r2, _ := store.GetUserByID("r2")
	require.Zero(t, r2.CommissionBalance)
	r3, _ := store.GetUserByID("r3")
	require.InDelta(t, 4.0, r3.CommissionBalance, 1e-9)
}

func TestPayProfitShareBrokenChainStops(t *testing.T) {
	store := chainStore()
	delete(store.users, "r2") // цепочка рвется на r2

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayProfitShare("staker", 100, "stake-1"))

	// Выше разрыва никто не получает.
	r3, _ := store.GetUserByID("r3")
	require.Zero(t, r3.CommissionBalance)
	require.Empty(t, store.commissions)
}

func TestPayProfitShareMaxDepth(t *testing.T) {
	// Цепочка из восьми предков: выплаты только на глубинах 2-6.
	store := newFakeStore()
	store.addUser(models.User{UserID: "staker", Level: 1, ReferredBy: refBy("a1")})
	for i := 1; i <= 8; i++ {
		user := models.User{UserID: chainID(i), Level: 2}
		if i < 8 {
			user.ReferredBy = refBy(chainID(i + 1))
		}
		store.addUser(user)
	}
	store.addPackage(models.InvestmentPackage{
		Level:         2,
		ProfitShare:   [models.MaxReferralDepth]float64{0, 5, 5, 5, 5, 5},
		EnabledLevels: allDepths(),
	})

	d := &Distributor{Store: store, Notifier: notify.Nop{}}
	require.NoError(t, d.PayProfitShare("staker", 100, "stake-1"))

	require.Len(t, store.commissions, 5) // глубины 2, 3, 4, 5, 6
	for _, c := range store.commissions {
		require.GreaterOrEqual(t, c.Depth, 2)
		require.LessOrEqual(t, c.Depth, models.MaxReferralDepth)
	}
}

func chainID(i int) string {
	return fmt.Sprintf("a%d", i)
}
