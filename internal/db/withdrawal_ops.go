package db

import (
	"database/sql"
	"fmt"
	"log"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/utils"
)

const withdrawalColumns = `withdrawal_id, user_id, amount, wallet_address_enc, status,
        created_at, approved_at, approved_by, transaction_hash, rejection_reason`

// scanWithdrawal читает строку заявки и расшифровывает адрес кошелька.
// Ошибка расшифровки не фатальна: заявка возвращается с пустым адресом.
func scanWithdrawal(row interface{ Scan(...any) error }) (models.Withdrawal, error) {
	var w models.Withdrawal
	var addressEnc string
	err := row.Scan(
		&w.WithdrawalID, &w.UserID, &w.Amount, &addressEnc, &w.Status,
		&w.CreatedAt, &w.ApprovedAt, &w.ApprovedBy, &w.TransactionHash, &w.RejectionReason,
	)
	if err != nil {
		return w, err
	}
	address, errDec := utils.DecryptWalletAddress(addressEnc)
	if errDec != nil {
		log.Printf("scanWithdrawal: не удалось расшифровать адрес для заявки %s: %v", w.WithdrawalID, errDec)
	} else {
		w.WalletAddress = address
	}
	return w, nil
}

// CreateWithdrawal вставляет заявку на вывод. Адрес кошелька шифруется перед
// записью. Списание баланса выполняет вызывающая сторона отдельным
// атомарным декрементом.
func CreateWithdrawal(w models.Withdrawal) error {
	addressEnc, err := utils.EncryptWalletAddress(w.WalletAddress)
	if err != nil {
		log.Printf("CreateWithdrawal: ошибка шифрования адреса кошелька: %v", err)
		return err
	}
	query := `
        INSERT INTO withdrawals (withdrawal_id, user_id, amount, wallet_address_enc,
            status, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`
	_, err = DB.Exec(query, w.WithdrawalID, w.UserID, w.Amount, addressEnc, w.Status)
	if err != nil {
		log.Printf("CreateWithdrawal: ошибка создания заявки на вывод для пользователя %s: %v", w.UserID, err)
		return err
	}
	log.Printf("Заявка на вывод #%s на сумму %.2f создана (пользователь %s).", w.WithdrawalID, w.Amount, w.UserID)
	return nil
}

// GetWithdrawalByID извлекает заявку на вывод по идентификатору.
func GetWithdrawalByID(withdrawalID string) (models.Withdrawal, error) {
	row := DB.QueryRow(`SELECT `+withdrawalColumns+` FROM withdrawals WHERE withdrawal_id = $1`, withdrawalID)
	w, err := scanWithdrawal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return w, fmt.Errorf("заявка на вывод %s не найдена", withdrawalID)
		}
		log.Printf("GetWithdrawalByID: ошибка получения заявки %s: %v", withdrawalID, err)
		return w, err
	}
	return w, nil
}

// GetWithdrawalsByUser возвращает заявки пользователя, новые первыми.
func GetWithdrawalsByUser(userID string) ([]models.Withdrawal, error) {
	return queryWithdrawals(`SELECT `+withdrawalColumns+` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// GetAllWithdrawals возвращает все заявки на вывод (для админа).
func GetAllWithdrawals() ([]models.Withdrawal, error) {
	return queryWithdrawals(`SELECT ` + withdrawalColumns + ` FROM withdrawals ORDER BY created_at DESC`)
}

func queryWithdrawals(query string, args ...any) ([]models.Withdrawal, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("queryWithdrawals: ошибка запроса заявок на вывод: %v", err)
		return nil, err
	}
	defer rows.Close()

	var withdrawals []models.Withdrawal
	for rows.Next() {
		w, errScan := scanWithdrawal(rows)
		if errScan != nil {
			log.Printf("queryWithdrawals: ошибка сканирования заявки: %v", errScan)
			continue
		}
		withdrawals = append(withdrawals, w)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// ApproveWithdrawal подтверждает заявку и сохраняет хэш транзакции выплаты.
func ApproveWithdrawal(withdrawalID, adminID, transactionHash string) error {
	result, err := DB.Exec(`
        UPDATE withdrawals SET status = $1, approved_at = NOW(), approved_by = $2,
            transaction_hash = $3
        WHERE withdrawal_id = $4 AND status = $5`,
		constants.WITHDRAWAL_STATUS_APPROVED, adminID, transactionHash,
		withdrawalID, constants.WITHDRAWAL_STATUS_PENDING,
	)
	if err != nil {
		log.Printf("ApproveWithdrawal: ошибка подтверждения заявки %s: %v", withdrawalID, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("заявка на вывод %s не найдена или уже обработана", withdrawalID)
	}
	return nil
}

// RejectWithdrawal отклоняет заявку. Возврат списанной суммы на кошелек
// выполняет вызывающая сторона.
func RejectWithdrawal(withdrawalID, adminID, reason string) (bool, error) {
	result, err := DB.Exec(`
        UPDATE withdrawals SET status = $1, rejection_reason = $2, approved_by = $3
        WHERE withdrawal_id = $4 AND status = $5`,
		constants.WITHDRAWAL_STATUS_REJECTED, reason, adminID,
		withdrawalID, constants.WITHDRAWAL_STATUS_PENDING,
	)
	if err != nil {
		log.Printf("RejectWithdrawal: ошибка отклонения заявки %s: %v", withdrawalID, err)
		return false, err
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

// TotalApprovedWithdrawals возвращает сумму подтвержденных выводов.
func TotalApprovedWithdrawals() (float64, error) {
	var total float64
	err := DB.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM withdrawals WHERE status = $1`,
		constants.WITHDRAWAL_STATUS_APPROVED,
	).Scan(&total)
	if err != nil {
		log.Printf("TotalApprovedWithdrawals: ошибка подсчета: %v", err)
		return 0, err
	}
	return total, nil
}

// CountWithdrawalsByStatus возвращает число заявок в данном статусе.
// userID может быть пустым - тогда считаются заявки всех пользователей.
func CountWithdrawalsByStatus(userID, status string) (int, error) {
	var count int
	var err error
	if userID == "" {
		err = DB.QueryRow(`SELECT COUNT(*) FROM withdrawals WHERE status = $1`, status).Scan(&count)
	} else {
		err = DB.QueryRow(`SELECT COUNT(*) FROM withdrawals WHERE user_id = $1 AND status = $2`, userID, status).Scan(&count)
	}
	if err != nil {
		log.Printf("CountWithdrawalsByStatus: ошибка подсчета заявок (%s): %v", status, err)
		return 0, err
	}
	return count, nil
}
