package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq" // Для работы с массивами PostgreSQL / For working with PostgreSQL arrays

	"Minex/internal/models"
)

const userColumns = `user_id, email, full_name, password_hash, role, level,
        total_investment, wallet_balance, roi_balance, commission_balance,
        referral_code, referred_by, direct_referrals, created_at, last_roi_date, is_active`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.Level,
		&u.TotalInvestment,
		&u.WalletBalance,
		&u.ROIBalance,
		&u.CommissionBalance,
		&u.ReferralCode,
		&u.ReferredBy,
		pq.Array(&u.DirectReferrals),
		&u.CreatedAt,
		&u.LastROIDate,
		&u.IsActive,
	)
	return u, err
}

// CreateUser вставляет нового пользователя.
// CreateUser inserts a new user record.
func CreateUser(u models.User) error {
	query := `
        INSERT INTO users (user_id, email, full_name, password_hash, role, level,
            total_investment, wallet_balance, roi_balance, commission_balance,
            referral_code, referred_by, direct_referrals, created_at, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), $14)`
	_, err := DB.Exec(query,
		u.UserID, u.Email, u.FullName, u.PasswordHash, u.Role, u.Level,
		u.TotalInvestment, u.WalletBalance, u.ROIBalance, u.CommissionBalance,
		u.ReferralCode, u.ReferredBy, pq.Array(u.DirectReferrals), u.IsActive,
	)
	if err != nil {
		log.Printf("CreateUser: ошибка создания пользователя %s: %v", u.Email, err)
		return err
	}
	log.Printf("Пользователь %s успешно создан (user_id %s).", u.Email, u.UserID)
	return nil
}

// GetUserByID извлекает пользователя по user_id.
func GetUserByID(userID string) (models.User, error) {
	row := DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, fmt.Errorf("пользователь %s не найден", userID)
		}
		log.Printf("GetUserByID: ошибка получения пользователя %s: %v", userID, err)
		return u, err
	}
	return u, nil
}

// GetUserByEmail извлекает пользователя по email.
func GetUserByEmail(email string) (models.User, error) {
	row := DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, sql.ErrNoRows
		}
		log.Printf("GetUserByEmail: ошибка получения пользователя %s: %v", email, err)
		return u, err
	}
	return u, nil
}

// GetUserByReferralCode извлекает пользователя по реферальному коду.
// Используется при регистрации: код должен указывать на существующего
// пользователя, иначе регистрация отклоняется.
func GetUserByReferralCode(code string) (models.User, error) {
	row := DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, sql.ErrNoRows
		}
		log.Printf("GetUserByReferralCode: ошибка поиска по коду %s: %v", code, err)
		return u, err
	}
	return u, nil
}

// AppendDirectReferral добавляет user_id нового реферала в список прямых
// рефералов пригласившего. Список только растет.
func AppendDirectReferral(referrerID, newUserID string) error {
	_, err := DB.Exec(
		`UPDATE users SET direct_referrals = array_append(direct_referrals, $1) WHERE user_id = $2`,
		newUserID, referrerID,
	)
	if err != nil {
		log.Printf("AppendDirectReferral: ошибка добавления реферала %s к %s: %v", newUserID, referrerID, err)
		return err
	}
	return nil
}

// IncrementUserBalances атомарно изменяет балансовые поля пользователя одним
// UPDATE (аналог $inc). Нулевые дельты допустимы. Приложение не делает
// read-modify-write, чтобы исключить потерянные обновления.
// IncrementUserBalances atomically increments balance fields in one statement.
func IncrementUserBalances(userID string, wallet, roi, commission, investment float64) error {
	result, err := DB.Exec(`
        UPDATE users SET
            wallet_balance = wallet_balance + $1,
            roi_balance = roi_balance + $2,
            commission_balance = commission_balance + $3,
            total_investment = total_investment + $4
        WHERE user_id = $5`,
		wallet, roi, commission, investment, userID,
	)
	if err != nil {
		log.Printf("IncrementUserBalances: ошибка обновления балансов пользователя %s: %v", userID, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("пользователь %s не найден для обновления балансов", userID)
	}
	return nil
}

// SetLastROIDate обновляет отметку последнего начисления ROI.
func SetLastROIDate(userID string) error {
	_, err := DB.Exec(`UPDATE users SET last_roi_date = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		log.Printf("SetLastROIDate: ошибка обновления last_roi_date пользователя %s: %v", userID, err)
	}
	return err
}

// SetUserLevel устанавливает уровень пользователя. Вызывающая сторона обязана
// убедиться, что новый уровень выше текущего: понижение не применяется.
func SetUserLevel(userID string, level int) error {
	_, err := DB.Exec(`UPDATE users SET level = $1 WHERE user_id = $2`, level, userID)
	if err != nil {
		log.Printf("SetUserLevel: ошибка установки уровня %d пользователю %s: %v", level, userID, err)
		return err
	}
	log.Printf("Пользователь %s повышен до уровня %d.", userID, level)
	return nil
}

// GetAllUsers возвращает всех пользователей (для панели администратора).
func GetAllUsers() ([]models.User, error) {
	rows, err := DB.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		log.Printf("GetAllUsers: ошибка запроса пользователей: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, errScan := scanUser(rows)
		if errScan != nil {
			log.Printf("GetAllUsers: ошибка сканирования пользователя: %v", errScan)
			continue
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetAllUsers: ошибка после итерации по строкам: %v", err)
		return nil, err
	}
	return users, nil
}

// CountUsers возвращает общее число пользователей.
func CountUsers() (int, error) {
	var count int
	err := DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		log.Printf("CountUsers: ошибка подсчета пользователей: %v", err)
		return 0, err
	}
	return count, nil
}
