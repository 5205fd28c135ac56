package referral

import (
	"log"

	"Minex/internal/models"
)

// PackageSource - читающий доступ к активным пакетам по убыванию уровня.
type PackageSource interface {
	ActivePackagesByLevelDesc() ([]models.InvestmentPackage, error)
}

// LevelSource объединяет доступы, необходимые для расчета уровня.
type LevelSource interface {
	UserSource
	PackageSource
}

// CalculateLevel возвращает наивысший уровень пакета, которому удовлетворяют
// совокупные инвестиции и размеры команды по глубинам. Пакеты проверяются
// строго по убыванию уровня; первый подошедший выигрывает, частичный зачет
// по младшим уровням не ведется. Если ни один пакет не подошел - уровень 1.
// CalculateLevel returns the highest qualifying package level, defaulting to 1.
func CalculateLevel(packagesDesc []models.InvestmentPackage, totalInvestment float64, teamCounts [models.MaxReferralDepth]int) int {
	for _, pkg := range packagesDesc {
		if totalInvestment < pkg.MinInvestment {
			continue
		}
		qualified := true
		for d := 0; d < models.MaxReferralDepth; d++ {
			if pkg.TeamRequired[d] > 0 && teamCounts[d] < pkg.TeamRequired[d] {
				qualified = false
				break
			}
		}
		if qualified {
			return pkg.Level
		}
	}
	return 1
}

// ComputeLevel вычисляет уровень пользователя по текущему состоянию
// хранилища. Возвращенное значение применяется вызывающей стороной только
// при повышении: расчет ниже текущего уровня пользователя не понижает.
func ComputeLevel(src LevelSource, userID string, totalInvestment float64) (int, error) {
	counts, err := TeamCounts(src, userID)
	if err != nil {
		return 1, err
	}
	packages, err := src.ActivePackagesByLevelDesc()
	if err != nil {
		log.Printf("ComputeLevel: не удалось получить пакеты для пользователя %s: %v", userID, err)
		return 1, err
	}
	return CalculateLevel(packages, totalInvestment, counts), nil
}
