package db

import (
	"database/sql"
	"fmt"
	"log"

	"Minex/internal/constants"
	"Minex/internal/models"
)

const depositColumns = `deposit_id, user_id, amount, payment_method, transaction_hash,
        status, created_at, approved_at, approved_by, rejection_reason`

func scanDeposit(row interface{ Scan(...any) error }) (models.Deposit, error) {
	var d models.Deposit
	err := row.Scan(
		&d.DepositID, &d.UserID, &d.Amount, &d.PaymentMethod, &d.TransactionHash,
		&d.Status, &d.CreatedAt, &d.ApprovedAt, &d.ApprovedBy, &d.RejectionReason,
	)
	return d, err
}

// CreateDeposit вставляет новую заявку на пополнение в статусе pending.
func CreateDeposit(d models.Deposit) error {
	query := `
        INSERT INTO deposits (deposit_id, user_id, amount, payment_method,
            transaction_hash, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	_, err := DB.Exec(query,
		d.DepositID, d.UserID, d.Amount, d.PaymentMethod, d.TransactionHash, d.Status,
	)
	if err != nil {
		log.Printf("CreateDeposit: ошибка создания депозита для пользователя %s: %v", d.UserID, err)
		return err
	}
	log.Printf("Депозит #%s на сумму %.2f создан (пользователь %s).", d.DepositID, d.Amount, d.UserID)
	return nil
}

// GetDepositByID извлекает депозит по идентификатору.
func GetDepositByID(depositID string) (models.Deposit, error) {
	row := DB.QueryRow(`SELECT `+depositColumns+` FROM deposits WHERE deposit_id = $1`, depositID)
	d, err := scanDeposit(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return d, fmt.Errorf("депозит %s не найден", depositID)
		}
		log.Printf("GetDepositByID: ошибка получения депозита %s: %v", depositID, err)
		return d, err
	}
	return d, nil
}

// GetDepositsByUser возвращает депозиты пользователя, новые первыми.
func GetDepositsByUser(userID string) ([]models.Deposit, error) {
	return queryDeposits(`SELECT `+depositColumns+` FROM deposits WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// GetAllDeposits возвращает все депозиты (для админа).
func GetAllDeposits() ([]models.Deposit, error) {
	return queryDeposits(`SELECT ` + depositColumns + ` FROM deposits ORDER BY created_at DESC`)
}

func queryDeposits(query string, args ...any) ([]models.Deposit, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("queryDeposits: ошибка запроса депозитов: %v", err)
		return nil, err
	}
	defer rows.Close()

	var deposits []models.Deposit
	for rows.Next() {
		d, errScan := scanDeposit(rows)
		if errScan != nil {
			log.Printf("queryDeposits: ошибка сканирования депозита: %v", errScan)
			continue
		}
		deposits = append(deposits, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return deposits, nil
}

// ApproveDeposit переводит депозит из pending в approved. Условие по статусу
// в WHERE исключает повторное подтверждение.
func ApproveDeposit(depositID, adminID string) (bool, error) {
	result, err := DB.Exec(`
        UPDATE deposits SET status = $1, approved_at = NOW(), approved_by = $2
        WHERE deposit_id = $3 AND status = $4`,
		constants.DEPOSIT_STATUS_APPROVED, adminID, depositID, constants.DEPOSIT_STATUS_PENDING,
	)
	if err != nil {
		log.Printf("ApproveDeposit: ошибка подтверждения депозита %s: %v", depositID, err)
		return false, err
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

// RejectDeposit отклоняет депозит с указанием причины.
func RejectDeposit(depositID, adminID, reason string) error {
	result, err := DB.Exec(`
        UPDATE deposits SET status = $1, rejection_reason = $2, approved_by = $3
        WHERE deposit_id = $4 AND status = $5`,
		constants.DEPOSIT_STATUS_REJECTED, reason, adminID, depositID, constants.DEPOSIT_STATUS_PENDING,
	)
	if err != nil {
		log.Printf("RejectDeposit: ошибка отклонения депозита %s: %v", depositID, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("депозит %s не найден или уже обработан", depositID)
	}
	return nil
}

// TotalApprovedDeposits возвращает сумму подтвержденных депозитов.
func TotalApprovedDeposits() (float64, error) {
	var total float64
	err := DB.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM deposits WHERE status = $1`,
		constants.DEPOSIT_STATUS_APPROVED,
	).Scan(&total)
	if err != nil {
		log.Printf("TotalApprovedDeposits: ошибка подсчета: %v", err)
		return 0, err
	}
	return total, nil
}

// CountDepositsByStatus возвращает число депозитов в данном статусе.
func CountDepositsByStatus(status string) (int, error) {
	var count int
	err := DB.QueryRow(`SELECT COUNT(*) FROM deposits WHERE status = $1`, status).Scan(&count)
	if err != nil {
		log.Printf("CountDepositsByStatus: ошибка подсчета депозитов (%s): %v", status, err)
		return 0, err
	}
	return count, nil
}
