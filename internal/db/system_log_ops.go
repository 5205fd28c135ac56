package db

import (
	"log"

	"Minex/internal/models"
)

// InsertDistributionLog записывает итог цикла распределения в журнал
// системных событий.
func InsertDistributionLog(l models.DistributionLog) error {
	query := `
        INSERT INTO system_logs (log_id, type, run_time, stakes_processed,
            total_roi_distributed, users_notified, stakes_completed, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := DB.Exec(query,
		l.LogID, l.Type, l.RunTime, l.StakesProcessed,
		l.TotalROIDistributed, l.UsersNotified, l.StakesCompleted, l.Status,
	)
	if err != nil {
		log.Printf("InsertDistributionLog: ошибка записи журнала распределения: %v", err)
		return err
	}
	return nil
}

// GetDistributionLogs возвращает журнал распределений, новые первыми.
func GetDistributionLogs(limit int) ([]models.DistributionLog, error) {
	rows, err := DB.Query(`
        SELECT log_id, type, run_time, stakes_processed, total_roi_distributed,
               users_notified, stakes_completed, status
        FROM system_logs ORDER BY run_time DESC LIMIT $1`, limit)
	if err != nil {
		log.Printf("GetDistributionLogs: ошибка запроса журнала: %v", err)
		return nil, err
	}
	defer rows.Close()

	var logs []models.DistributionLog
	for rows.Next() {
		var l models.DistributionLog
		errScan := rows.Scan(
			&l.LogID, &l.Type, &l.RunTime, &l.StakesProcessed, &l.TotalROIDistributed,
			&l.UsersNotified, &l.StakesCompleted, &l.Status,
		)
		if errScan != nil {
			log.Printf("GetDistributionLogs: ошибка сканирования записи журнала: %v", errScan)
			continue
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// InsertEmailLog записывает результат отправки письма.
func InsertEmailLog(l models.EmailLog) error {
	query := `
        INSERT INTO email_logs (email_id, recipient, subject, status, error, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`
	_, err := DB.Exec(query, l.EmailID, l.Recipient, l.Subject, l.Status, l.Error)
	if err != nil {
		log.Printf("InsertEmailLog: ошибка записи журнала писем: %v", err)
		return err
	}
	return nil
}

// GetEmailLogs возвращает журнал писем, новые первыми.
func GetEmailLogs(limit int) ([]models.EmailLog, error) {
	rows, err := DB.Query(`
        SELECT email_id, recipient, subject, status, COALESCE(error, ''), created_at
        FROM email_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		log.Printf("GetEmailLogs: ошибка запроса журнала писем: %v", err)
		return nil, err
	}
	defer rows.Close()

	var logs []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		errScan := rows.Scan(&l.EmailID, &l.Recipient, &l.Subject, &l.Status, &l.Error, &l.CreatedAt)
		if errScan != nil {
			log.Printf("GetEmailLogs: ошибка сканирования записи: %v", errScan)
			continue
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
