package db

import (
	"database/sql"
	"fmt"
	"log"

	"Minex/internal/constants"
	"Minex/internal/models"
)

const stakeColumns = `stake_id, user_id, package_id, amount, daily_roi, duration_days,
        start_date, end_date, status, total_earned, capital_returned, last_yield_date`

func scanStake(row interface{ Scan(...any) error }) (models.Stake, error) {
	var s models.Stake
	err := row.Scan(
		&s.StakeID, &s.UserID, &s.PackageID, &s.Amount, &s.DailyROI, &s.DurationDays,
		&s.StartDate, &s.EndDate, &s.Status, &s.TotalEarned, &s.CapitalReturned,
		&s.LastYieldDate,
	)
	return s, err
}

// CreateStake вставляет новую запись стейкинга с зафиксированными процентом
// и сроком.
func CreateStake(s models.Stake) error {
	query := `
        INSERT INTO stakes (stake_id, user_id, package_id, amount, daily_roi,
            duration_days, start_date, end_date, status, total_earned, capital_returned)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, FALSE)`
	_, err := DB.Exec(query,
		s.StakeID, s.UserID, s.PackageID, s.Amount, s.DailyROI,
		s.DurationDays, s.StartDate, s.EndDate, s.Status,
	)
	if err != nil {
		log.Printf("CreateStake: ошибка создания стейка для пользователя %s: %v", s.UserID, err)
		return err
	}
	log.Printf("Стейк #%s на сумму %.2f создан для пользователя %s.", s.StakeID, s.Amount, s.UserID)
	return nil
}

// GetActiveStakes возвращает все активные стейки для цикла распределения.
func GetActiveStakes() ([]models.Stake, error) {
	rows, err := DB.Query(
		`SELECT `+stakeColumns+` FROM stakes WHERE status = $1 ORDER BY start_date`,
		constants.STAKE_STATUS_ACTIVE,
	)
	if err != nil {
		log.Printf("GetActiveStakes: ошибка запроса активных стейков: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stakes []models.Stake
	for rows.Next() {
		s, errScan := scanStake(rows)
		if errScan != nil {
			log.Printf("GetActiveStakes: ошибка сканирования стейка: %v", errScan)
			continue
		}
		stakes = append(stakes, s)
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetActiveStakes: ошибка после итерации по строкам: %v", err)
		return nil, err
	}
	return stakes, nil
}

// GetStakesByUser возвращает стейки пользователя, новые первыми.
func GetStakesByUser(userID string) ([]models.Stake, error) {
	rows, err := DB.Query(
		`SELECT `+stakeColumns+` FROM stakes WHERE user_id = $1 ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		log.Printf("GetStakesByUser: ошибка запроса стейков пользователя %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var stakes []models.Stake
	for rows.Next() {
		s, errScan := scanStake(rows)
		if errScan != nil {
			log.Printf("GetStakesByUser: ошибка сканирования стейка: %v", errScan)
			continue
		}
		stakes = append(stakes, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stakes, nil
}

// CompleteStake помечает стейк завершенным с возвратом капитала. Условие
// capital_returned = FALSE в WHERE делает операцию идемпотентной: повторный
// вызов на уже завершенном стейке вернет completed = false, и вызывающая
// сторона не зачислит тело стейка второй раз.
// CompleteStake marks a stake completed. The capital_returned guard in the
// WHERE clause makes the transition happen exactly once.
func CompleteStake(stakeID string) (bool, error) {
	result, err := DB.Exec(`
        UPDATE stakes SET status = $1, capital_returned = TRUE
        WHERE stake_id = $2 AND capital_returned = FALSE`,
		constants.STAKE_STATUS_COMPLETED, stakeID,
	)
	if err != nil {
		log.Printf("CompleteStake: ошибка завершения стейка %s: %v", stakeID, err)
		return false, err
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

// AddStakeEarnings атомарно увеличивает total_earned и обновляет отметку
// последнего начисления.
func AddStakeEarnings(stakeID string, amount float64) error {
	result, err := DB.Exec(
		`UPDATE stakes SET total_earned = total_earned + $1, last_yield_date = NOW() WHERE stake_id = $2`,
		amount, stakeID,
	)
	if err != nil {
		log.Printf("AddStakeEarnings: ошибка обновления стейка %s: %v", stakeID, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("стейк %s не найден для начисления", stakeID)
	}
	return nil
}

// GetStakeByID извлекает стейк по идентификатору.
func GetStakeByID(stakeID string) (models.Stake, error) {
	row := DB.QueryRow(`SELECT `+stakeColumns+` FROM stakes WHERE stake_id = $1`, stakeID)
	s, err := scanStake(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return s, fmt.Errorf("стейк %s не найден", stakeID)
		}
		log.Printf("GetStakeByID: ошибка получения стейка %s: %v", stakeID, err)
		return s, err
	}
	return s, nil
}

// CountActiveStakes возвращает число активных стейков.
func CountActiveStakes() (int, error) {
	var count int
	err := DB.QueryRow(`SELECT COUNT(*) FROM stakes WHERE status = $1`, constants.STAKE_STATUS_ACTIVE).Scan(&count)
	if err != nil {
		log.Printf("CountActiveStakes: ошибка подсчета активных стейков: %v", err)
		return 0, err
	}
	return count, nil
}
