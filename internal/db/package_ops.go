package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"Minex/internal/models"
)

const packageColumns = `package_id, name, level, min_investment, max_investment,
        daily_roi, annual_roi, duration_days,
        direct_required, level_2_required, level_3_required, level_4_required,
        level_5_required, level_6_required,
        commission_direct,
        profit_share_level_2, profit_share_level_3, profit_share_level_4,
        profit_share_level_5, profit_share_level_6,
        commission_lv_a, commission_lv_b, commission_lv_c,
        enabled_levels, is_active, created_at`

// scanPackage читает сырую строку пакета и сразу нормализует унаследованные
// колонки в типизированную структуру (см. models.PackageRow.Normalize).
func scanPackage(row interface{ Scan(...any) error }) (models.InvestmentPackage, error) {
	var r models.PackageRow
	var enabled pq.Int64Array
	err := row.Scan(
		&r.PackageID, &r.Name, &r.Level, &r.MinInvestment, &r.MaxInvestment,
		&r.DailyROI, &r.AnnualROI, &r.DurationDays,
		&r.TeamRequired[0], &r.TeamRequired[1], &r.TeamRequired[2], &r.TeamRequired[3],
		&r.TeamRequired[4], &r.TeamRequired[5],
		&r.CommissionDirect,
		&r.ProfitShare[1], &r.ProfitShare[2], &r.ProfitShare[3],
		&r.ProfitShare[4], &r.ProfitShare[5],
		&r.CommissionLvA, &r.CommissionLvB, &r.CommissionLvC,
		&enabled, &r.IsActive, &r.CreatedAt,
	)
	if err != nil {
		return models.InvestmentPackage{}, err
	}
	for _, d := range enabled {
		if d >= 1 && d <= models.MaxReferralDepth {
			r.EnabledLevels[d-1] = true
		}
	}
	return r.Normalize(), nil
}

// GetPackageByLevel возвращает активный пакет указанного уровня.
// Выплаты ищут пакет по уровню ПОЛУЧАТЕЛЯ начисления.
func GetPackageByLevel(level int) (models.InvestmentPackage, error) {
	row := DB.QueryRow(
		`SELECT `+packageColumns+` FROM investment_packages WHERE level = $1 AND is_active = TRUE`,
		level,
	)
	p, err := scanPackage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, fmt.Errorf("активный пакет уровня %d не найден", level)
		}
		log.Printf("GetPackageByLevel: ошибка получения пакета уровня %d: %v", level, err)
		return p, err
	}
	return p, nil
}

// GetPackageByID возвращает пакет по идентификатору.
func GetPackageByID(packageID string) (models.InvestmentPackage, error) {
	row := DB.QueryRow(
		`SELECT `+packageColumns+` FROM investment_packages WHERE package_id = $1`,
		packageID,
	)
	p, err := scanPackage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, fmt.Errorf("пакет %s не найден", packageID)
		}
		log.Printf("GetPackageByID: ошибка получения пакета %s: %v", packageID, err)
		return p, err
	}
	return p, nil
}

// GetActivePackagesDesc возвращает активные пакеты по убыванию уровня.
// Порядок важен для расчета уровня: проверка идет от старших пакетов.
func GetActivePackagesDesc() ([]models.InvestmentPackage, error) {
	return queryPackages(`SELECT ` + packageColumns + ` FROM investment_packages WHERE is_active = TRUE ORDER BY level DESC`)
}

// GetActivePackagesAsc возвращает активные пакеты по возрастанию уровня
// (для витрины пакетов пользователю).
func GetActivePackagesAsc() ([]models.InvestmentPackage, error) {
	return queryPackages(`SELECT ` + packageColumns + ` FROM investment_packages WHERE is_active = TRUE ORDER BY level ASC`)
}

// GetAllPackages возвращает все пакеты, включая отключенные (для админа).
func GetAllPackages() ([]models.InvestmentPackage, error) {
	return queryPackages(`SELECT ` + packageColumns + ` FROM investment_packages ORDER BY level ASC`)
}

func queryPackages(query string) ([]models.InvestmentPackage, error) {
	rows, err := DB.Query(query)
	if err != nil {
		log.Printf("queryPackages: ошибка запроса пакетов: %v", err)
		return nil, err
	}
	defer rows.Close()

	var packages []models.InvestmentPackage
	for rows.Next() {
		p, errScan := scanPackage(rows)
		if errScan != nil {
			log.Printf("queryPackages: ошибка сканирования пакета: %v", errScan)
			continue
		}
		packages = append(packages, p)
	}
	if err = rows.Err(); err != nil {
		log.Printf("queryPackages: ошибка после итерации по строкам: %v", err)
		return nil, err
	}
	return packages, nil
}

// enabledLevelsArray собирает массив разрешенных глубин для записи в БД.
func enabledLevelsArray(p models.InvestmentPackage) pq.Int64Array {
	var enabled pq.Int64Array
	for d := 1; d <= models.MaxReferralDepth; d++ {
		if p.EnabledLevels[d-1] {
			enabled = append(enabled, int64(d))
		}
	}
	return enabled
}

// CreatePackage вставляет новый пакет. Заполняются только новые колонки;
// унаследованные commission_lv_* остаются NULL.
func CreatePackage(p models.InvestmentPackage) error {
	query := `
        INSERT INTO investment_packages (package_id, name, level, min_investment, max_investment,
            daily_roi, annual_roi, duration_days,
            direct_required, level_2_required, level_3_required, level_4_required,
            level_5_required, level_6_required,
            commission_direct,
            profit_share_level_2, profit_share_level_3, profit_share_level_4,
            profit_share_level_5, profit_share_level_6,
            enabled_levels, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            $15, $16, $17, $18, $19, $20, $21, $22, NOW())`
	_, err := DB.Exec(query,
		p.PackageID, p.Name, p.Level, p.MinInvestment, p.MaxInvestment,
		p.DailyROI, p.AnnualROI, p.DurationDays,
		p.TeamRequired[0], p.TeamRequired[1], p.TeamRequired[2], p.TeamRequired[3],
		p.TeamRequired[4], p.TeamRequired[5],
		p.CommissionDirect,
		p.ProfitShare[1], p.ProfitShare[2], p.ProfitShare[3], p.ProfitShare[4], p.ProfitShare[5],
		enabledLevelsArray(p), p.IsActive,
	)
	if err != nil {
		log.Printf("CreatePackage: ошибка создания пакета уровня %d: %v", p.Level, err)
		return err
	}
	log.Printf("Пакет %q (уровень %d) создан.", p.Name, p.Level)
	return nil
}

// UpdatePackage обновляет конфигурацию пакета. Уже открытые стейки не
// затрагиваются: их процент и срок зафиксированы при создании.
func UpdatePackage(p models.InvestmentPackage) error {
	query := `
        UPDATE investment_packages SET name = $1, level = $2, min_investment = $3,
            max_investment = $4, daily_roi = $5, annual_roi = $6, duration_days = $7,
            direct_required = $8, level_2_required = $9, level_3_required = $10,
            level_4_required = $11, level_5_required = $12, level_6_required = $13,
            commission_direct = $14,
            profit_share_level_2 = $15, profit_share_level_3 = $16,
            profit_share_level_4 = $17, profit_share_level_5 = $18,
            profit_share_level_6 = $19,
            enabled_levels = $20, is_active = $21
        WHERE package_id = $22`
	result, err := DB.Exec(query,
		p.Name, p.Level, p.MinInvestment, p.MaxInvestment, p.DailyROI, p.AnnualROI,
		p.DurationDays,
		p.TeamRequired[0], p.TeamRequired[1], p.TeamRequired[2], p.TeamRequired[3],
		p.TeamRequired[4], p.TeamRequired[5],
		p.CommissionDirect,
		p.ProfitShare[1], p.ProfitShare[2], p.ProfitShare[3], p.ProfitShare[4], p.ProfitShare[5],
		enabledLevelsArray(p), p.IsActive, p.PackageID,
	)
	if err != nil {
		log.Printf("UpdatePackage: ошибка обновления пакета %s: %v", p.PackageID, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("пакет %s не найден для обновления", p.PackageID)
	}
	return nil
}

// TogglePackage переключает флаг is_active и возвращает новое значение.
func TogglePackage(packageID string) (bool, error) {
	var isActive bool
	err := DB.QueryRow(
		`UPDATE investment_packages SET is_active = NOT is_active WHERE package_id = $1 RETURNING is_active`,
		packageID,
	).Scan(&isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("пакет %s не найден", packageID)
		}
		log.Printf("TogglePackage: ошибка переключения пакета %s: %v", packageID, err)
		return false, err
	}
	log.Printf("Пакет %s переключен: is_active = %v.", packageID, isActive)
	return isActive, nil
}

// CountPackages возвращает количество пакетов (для первичного заполнения).
func CountPackages() (int, error) {
	var count int
	err := DB.QueryRow(`SELECT COUNT(*) FROM investment_packages`).Scan(&count)
	if err != nil {
		log.Printf("CountPackages: ошибка подсчета пакетов: %v", err)
		return 0, err
	}
	return count, nil
}
