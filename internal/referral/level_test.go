package referral

import (
	"testing"

	"github.com/stretchr/testify/require"

	"Minex/internal/models"
)

// testPackagesDesc возвращает набор пакетов по убыванию уровня с
// нарастающими требованиями к инвестициям и команде.
func testPackagesDesc() []models.InvestmentPackage {
	return []models.InvestmentPackage{
		{Level: 4, MinInvestment: 10000, TeamRequired: [models.MaxReferralDepth]int{6, 8, 10}},
		{Level: 3, MinInvestment: 2000, TeamRequired: [models.MaxReferralDepth]int{5, 6}},
		{Level: 2, MinInvestment: 500, TeamRequired: [models.MaxReferralDepth]int{3, 4}},
		{Level: 1, MinInvestment: 50},
	}
}

func TestCalculateLevelDefault(t *testing.T) {
	level := CalculateLevel(testPackagesDesc(), 0, [models.MaxReferralDepth]int{})
	require.Equal(t, 1, level)
}

func TestCalculateLevelInvestmentAlone(t *testing.T) {
	// Инвестиций хватает на уровень 3, но команды нет: подходит только
	// уровень 1 без командных требований.
	level := CalculateLevel(testPackagesDesc(), 5000, [models.MaxReferralDepth]int{})
	require.Equal(t, 1, level)
}

func TestCalculateLevelHighestQualifying(t *testing.T) {
	counts := [models.MaxReferralDepth]int{5, 6, 0, 0, 0, 0}
	level := CalculateLevel(testPackagesDesc(), 5000, counts)
	require.Equal(t, 3, level)
}

func TestCalculateLevelNoPartialCredit(t *testing.T) {
	// Команда удовлетворяет уровню 3, но не уровню 4: несмотря на
	// инвестиции уровня 4, присваивается 3.
	counts := [models.MaxReferralDepth]int{6, 8, 4, 0, 0, 0}
	level := CalculateLevel(testPackagesDesc(), 50000, counts)
	require.Equal(t, 3, level)
}

func TestCalculateLevelTeamDepthShortfall(t *testing.T) {
	// На глубине 2 не хватает одного человека до уровня 2.
	counts := [models.MaxReferralDepth]int{3, 3, 0, 0, 0, 0}
	level := CalculateLevel(testPackagesDesc(), 1000, counts)
	require.Equal(t, 1, level)
}

func TestCalculateLevelEmptyPackages(t *testing.T) {
	level := CalculateLevel(nil, 100000, [models.MaxReferralDepth]int{9, 9, 9, 9, 9, 9})
	require.Equal(t, 1, level)
}

func TestComputeLevelFromTree(t *testing.T) {
	src := struct {
		mapSource
		packages []models.InvestmentPackage
	}{
		mapSource: mapSource{
			"root": {UserID: "root", DirectReferrals: []string{"a", "b", "c"}},
			"a":    {UserID: "a", ReferredBy: refBy("root"), DirectReferrals: []string{"a1", "a2"}},
			"b":    {UserID: "b", ReferredBy: refBy("root"), DirectReferrals: []string{"b1", "b2"}},
			"c":    {UserID: "c", ReferredBy: refBy("root")},
			"a1":   {UserID: "a1", ReferredBy: refBy("a")},
			"a2":   {UserID: "a2", ReferredBy: refBy("a")},
			"b1":   {UserID: "b1", ReferredBy: refBy("b")},
			"b2":   {UserID: "b2", ReferredBy: refBy("b")},
		},
		packages: testPackagesDesc(),
	}

	level, err := ComputeLevel(levelSourceFunc{src.mapSource, src.packages}, "root", 1000)
	require.NoError(t, err)
	// Команда 3/4 и инвестиции $1000 дают уровень 2.
	require.Equal(t, 2, level)
}

// levelSourceFunc собирает LevelSource из карты пользователей и списка пакетов.
type levelSourceFunc struct {
	mapSource
	packages []models.InvestmentPackage
}

func (s levelSourceFunc) ActivePackagesByLevelDesc() ([]models.InvestmentPackage, error) {
	return s.packages, nil
}
