package models

import (
	"database/sql"
	"time"
)

// InvestmentPackage - инвестиционный пакет (уровень 1-6).
// Требования к команде и проценты долей прибыли хранятся массивами
// фиксированного размера MaxReferralDepth: индекс 0 соответствует глубине 1
// (прямые рефералы), индекс 5 - глубине 6. Выплаты при начислении идут по
// пакету уровня ПОЛУЧАТЕЛЯ, а не стейкера.
// InvestmentPackage describes one membership tier. Team requirements and
// profit share rates are fixed-size per-depth arrays: index 0 is depth 1.
type InvestmentPackage struct {
	PackageID     string  `json:"package_id"`
	Name          string  `json:"name"`
	Level         int     `json:"level"`
	MinInvestment float64 `json:"min_investment"`
	MaxInvestment float64 `json:"max_investment"`
	DailyROI      float64 `json:"daily_roi"`
	AnnualROI     float64 `json:"annual_roi"`
	DurationDays  int     `json:"duration_days"`

	// TeamRequired[d-1] - минимальный размер команды на глубине d для
	// получения этого уровня. Ноль означает отсутствие требования.
	TeamRequired [MaxReferralDepth]int `json:"team_required"`

	// CommissionDirect - процент прямой комиссии (глубина 1) от суммы стейка.
	CommissionDirect float64 `json:"commission_direct"`

	// ProfitShare[d-1] - процент от суммы ROI, выплачиваемый аплайну на
	// глубине d. Индекс 0 (глубина 1) не участвует в распределении долей
	// прибыли - прямой реферер получает только CommissionDirect.
	ProfitShare [MaxReferralDepth]float64 `json:"profit_share"`

	// EnabledLevels[d-1] - разрешена ли выплата на глубине d. Отключенная
	// глубина не получает выплату даже при ненулевом проценте.
	EnabledLevels [MaxReferralDepth]bool `json:"enabled_levels"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// PackageRow - сырая строка пакета из БД до нормализации. Содержит как новые
// колонки (commission_direct, profit_share_level_N), так и унаследованные
// commission_lv_a/b/c из ранних версий схемы.
// PackageRow is the raw DB row before normalization, including legacy columns.
type PackageRow struct {
	InvestmentPackage

	CommissionLvA sql.NullFloat64
	CommissionLvB sql.NullFloat64
	CommissionLvC sql.NullFloat64
}

// Normalize сводит унаследованные поля к типизированной структуре один раз
// при чтении из БД. Правило: новая колонка имеет приоритет; если она пуста
// или равна нулю, берется значение старой (commission_lv_a -> прямая
// комиссия, lv_b -> доля глубины 2, lv_c -> доля глубины 3).
// Normalize folds the legacy columns into the typed fields once at load time
// so that payout code never does fallback lookups.
func (r PackageRow) Normalize() InvestmentPackage {
	p := r.InvestmentPackage

	if p.CommissionDirect == 0 && r.CommissionLvA.Valid {
		p.CommissionDirect = r.CommissionLvA.Float64
	}
	if p.ProfitShare[1] == 0 && r.CommissionLvB.Valid {
		p.ProfitShare[1] = r.CommissionLvB.Float64
	}
	if p.ProfitShare[2] == 0 && r.CommissionLvC.Valid {
		p.ProfitShare[2] = r.CommissionLvC.Float64
	}
	return p
}

// ProfitShareAt возвращает процент доли прибыли для глубины depth (1-6) с
// учетом набора разрешенных глубин. Для запрещенной или неизвестной глубины
// возвращает 0.
func (p InvestmentPackage) ProfitShareAt(depth int) float64 {
	if depth < 1 || depth > MaxReferralDepth {
		return 0
	}
	if !p.EnabledLevels[depth-1] {
		return 0
	}
	return p.ProfitShare[depth-1]
}

// DirectCommissionRate возвращает процент прямой комиссии, если выплаты на
// глубине 1 разрешены этим пакетом.
func (p InvestmentPackage) DirectCommissionRate() float64 {
	if !p.EnabledLevels[0] {
		return 0
	}
	return p.CommissionDirect
}
