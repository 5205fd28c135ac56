package db

import (
	"database/sql"
	"log"

	"Minex/internal/models"
)

// InsertCommission записывает неизменяемую запись аудита о комиссионной
// выплате. Записи никогда не изменяются после создания.
func InsertCommission(c models.Commission) error {
	query := `
        INSERT INTO commissions (commission_id, user_id, from_user_id, amount,
            percentage, depth, source_type, stake_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`
	_, err := DB.Exec(query,
		c.CommissionID, c.UserID, c.FromUserID, c.Amount,
		c.Percentage, c.Depth, c.SourceType, c.StakeID,
	)
	if err != nil {
		log.Printf("InsertCommission: ошибка записи комиссии для пользователя %s: %v", c.UserID, err)
		return err
	}
	return nil
}

// GetCommissionsByUser возвращает комиссии получателя, новые первыми.
func GetCommissionsByUser(userID string) ([]models.Commission, error) {
	rows, err := DB.Query(`
        SELECT commission_id, user_id, from_user_id, amount, percentage, depth,
               source_type, stake_id, created_at
        FROM commissions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		log.Printf("GetCommissionsByUser: ошибка запроса комиссий пользователя %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var commissions []models.Commission
	for rows.Next() {
		var c models.Commission
		errScan := rows.Scan(
			&c.CommissionID, &c.UserID, &c.FromUserID, &c.Amount, &c.Percentage,
			&c.Depth, &c.SourceType, &c.StakeID, &c.CreatedAt,
		)
		if errScan != nil {
			log.Printf("GetCommissionsByUser: ошибка сканирования комиссии: %v", errScan)
			continue
		}
		commissions = append(commissions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return commissions, nil
}

// SummarizeCommissions агрегирует комиссии получателя по глубинам.
func SummarizeCommissions(userID string) (models.CommissionSummary, error) {
	var summary models.CommissionSummary
	rows, err := DB.Query(
		`SELECT depth, COALESCE(SUM(amount), 0) FROM commissions WHERE user_id = $1 GROUP BY depth`,
		userID,
	)
	if err != nil {
		log.Printf("SummarizeCommissions: ошибка агрегации комиссий пользователя %s: %v", userID, err)
		return summary, err
	}
	defer rows.Close()

	for rows.Next() {
		var depth int
		var total float64
		if errScan := rows.Scan(&depth, &total); errScan != nil {
			log.Printf("SummarizeCommissions: ошибка сканирования агрегата: %v", errScan)
			continue
		}
		if depth >= 1 && depth <= models.MaxReferralDepth {
			summary.ByDepth[depth-1] = total
		}
		summary.Total += total
	}
	if err = rows.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// TotalCommissionsPaid возвращает общую сумму выплаченных комиссий.
func TotalCommissionsPaid() (float64, error) {
	var total float64
	err := DB.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM commissions`).Scan(&total)
	if err != nil {
		log.Printf("TotalCommissionsPaid: ошибка подсчета: %v", err)
		return 0, err
	}
	return total, nil
}

// GetCommissionsForExcel получает данные для Excel-отчета по комиссиям.
// GetCommissionsForExcel retrieves data for the commissions Excel report.
func GetCommissionsForExcel() (*sql.Rows, error) {
	query := `
        SELECT u_payee.email, u_payee.full_name,
               u_payer.email,
               c.amount, c.percentage, c.depth, c.source_type, c.created_at
        FROM commissions c
        JOIN users u_payee ON c.user_id = u_payee.user_id
        JOIN users u_payer ON c.from_user_id = u_payer.user_id
        ORDER BY c.created_at DESC`
	rows, err := DB.Query(query)
	if err != nil {
		log.Printf("GetCommissionsForExcel: ошибка получения данных для Excel: %v", err)
		return nil, err
	}
	return rows, nil
}
