package models

import "time"

// DistributionSummary - итог одного цикла распределения ROI. Ручной запуск
// администратором возвращает ту же структуру, что и автоматический.
// DistributionSummary is the result of one ROI distribution cycle.
type DistributionSummary struct {
	StakesProcessed     int       `json:"stakes_processed"`
	TotalROIDistributed float64   `json:"total_roi_distributed"`
	StakesCompleted     int       `json:"stakes_completed"`
	UsersNotified       int       `json:"users_notified"`
	RunTime             time.Time `json:"run_time"`
	NextRun             time.Time `json:"next_run"`
}

// DistributionLog - строка журнала системных событий о прошедшем цикле.
type DistributionLog struct {
	LogID               string    `json:"log_id"`
	Type                string    `json:"type"`
	RunTime             time.Time `json:"run_time"`
	StakesProcessed     int       `json:"stakes_processed"`
	TotalROIDistributed float64   `json:"total_roi_distributed"`
	UsersNotified       int       `json:"users_notified"`
	StakesCompleted     int       `json:"stakes_completed"`
	Status              string    `json:"status"`
}

// SchedulerStatus - состояние планировщика для административного API.
type SchedulerStatus struct {
	IsRunning bool   `json:"is_running"`
	LastRun   string `json:"last_run"`
	NextRun   string `json:"next_run"`
	Schedule  string `json:"schedule"`
}

// EmailLog - запись аудита об отправленном (или неотправленном) письме.
type EmailLog struct {
	EmailID   string    `json:"email_id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"` // "sent" или "failed"
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
