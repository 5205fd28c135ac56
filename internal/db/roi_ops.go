package db

import (
	"log"

	"Minex/internal/models"
)

// InsertROITransaction записывает неизменяемую запись аудита о ежедневном
// начислении ROI по стейку.
func InsertROITransaction(t models.ROITransaction) error {
	query := `
        INSERT INTO roi_transactions (transaction_id, user_id, stake_id, amount,
            roi_percentage, auto_distributed, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	_, err := DB.Exec(query,
		t.TransactionID, t.UserID, t.StakeID, t.Amount, t.ROIPercentage, t.AutoDistributed,
	)
	if err != nil {
		log.Printf("InsertROITransaction: ошибка записи ROI-транзакции для стейка %s: %v", t.StakeID, err)
		return err
	}
	return nil
}

// GetROITransactionsByUser возвращает историю начислений пользователя.
func GetROITransactionsByUser(userID string) ([]models.ROITransaction, error) {
	rows, err := DB.Query(`
        SELECT transaction_id, user_id, stake_id, amount, roi_percentage,
               auto_distributed, created_at
        FROM roi_transactions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		log.Printf("GetROITransactionsByUser: ошибка запроса транзакций пользователя %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var txs []models.ROITransaction
	for rows.Next() {
		var t models.ROITransaction
		errScan := rows.Scan(
			&t.TransactionID, &t.UserID, &t.StakeID, &t.Amount, &t.ROIPercentage,
			&t.AutoDistributed, &t.CreatedAt,
		)
		if errScan != nil {
			log.Printf("GetROITransactionsByUser: ошибка сканирования транзакции: %v", errScan)
			continue
		}
		txs = append(txs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// TotalROIPaid возвращает общую сумму выплаченного ROI.
func TotalROIPaid() (float64, error) {
	var total float64
	err := DB.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM roi_transactions`).Scan(&total)
	if err != nil {
		log.Printf("TotalROIPaid: ошибка подсчета: %v", err)
		return 0, err
	}
	return total, nil
}
