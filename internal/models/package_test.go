package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestNormalizeLegacyColumns(t *testing.T) {
	row := PackageRow{
		InvestmentPackage: InvestmentPackage{Name: "Silver", Level: 2},
		CommissionLvA:     nf(12),
		CommissionLvB:     nf(5),
		CommissionLvC:     nf(2),
	}

	p := row.Normalize()
	require.InDelta(t, 12.0, p.CommissionDirect, 1e-9)
	require.InDelta(t, 5.0, p.ProfitShare[1], 1e-9)
	require.InDelta(t, 2.0, p.ProfitShare[2], 1e-9)
}

func TestNormalizeNewColumnsWin(t *testing.T) {
	// Заполненные новые колонки имеют приоритет над унаследованными.
	row := PackageRow{
		InvestmentPackage: InvestmentPackage{
			CommissionDirect: 15,
			ProfitShare:      [MaxReferralDepth]float64{0, 7, 3},
		},
		CommissionLvA: nf(12),
		CommissionLvB: nf(5),
		CommissionLvC: nf(2),
	}

	p := row.Normalize()
	require.InDelta(t, 15.0, p.CommissionDirect, 1e-9)
	require.InDelta(t, 7.0, p.ProfitShare[1], 1e-9)
	require.InDelta(t, 3.0, p.ProfitShare[2], 1e-9)
}

func TestNormalizeNullLegacy(t *testing.T) {
	row := PackageRow{InvestmentPackage: InvestmentPackage{Name: "Bronze"}}
	p := row.Normalize()
	require.Zero(t, p.CommissionDirect)
	require.Zero(t, p.ProfitShare[1])
}

func TestProfitShareAt(t *testing.T) {
	p := InvestmentPackage{
		ProfitShare:   [MaxReferralDepth]float64{1, 5, 2, 0, 0, 0},
		EnabledLevels: [MaxReferralDepth]bool{true, true, false, true, true, true},
	}

	require.InDelta(t, 5.0, p.ProfitShareAt(2), 1e-9)
	// Отключенная глубина не платит даже при ненулевом проценте.
	require.Zero(t, p.ProfitShareAt(3))
	// За пределами поддерживаемых глубин всегда ноль.
	require.Zero(t, p.ProfitShareAt(0))
	require.Zero(t, p.ProfitShareAt(7))
}

func TestDirectCommissionRate(t *testing.T) {
	p := InvestmentPackage{
		CommissionDirect: 12,
		EnabledLevels:    [MaxReferralDepth]bool{true},
	}
	require.InDelta(t, 12.0, p.DirectCommissionRate(), 1e-9)

	p.EnabledLevels[0] = false
	require.Zero(t, p.DirectCommissionRate())
}

func TestStakeMaturedAndDailyAmount(t *testing.T) {
	end := mustParse(t, "2025-06-01T00:00:00Z")
	s := Stake{Amount: 1000, DailyROI: 2.5, EndDate: end}

	require.InDelta(t, 25.0, s.DailyAmount(), 1e-9)
	require.False(t, s.Matured(mustParse(t, "2025-05-31T23:59:59Z")))
	require.True(t, s.Matured(end))
	require.True(t, s.Matured(mustParse(t, "2025-06-02T00:00:00Z")))
}
