// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	AppEnv      string
	Port        string

	JWTSecret string

	// Время ежедневного запуска распределения ROI (UTC).
	ROIRunHour   int
	ROIRunMinute int

	// SMTP для пользовательских уведомлений.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	// Telegram-бот для уведомлений администратора.
	TelegramToken string
	AdminChatID   int64

	// Адрес USDT-кошелька платформы для приема депозитов.
	USDTWalletAddress string

	// Базовый адрес фронтенда для реферальных ссылок и QR-кодов.
	AppBaseURL string

	// Учетные данные корневого администратора для первичного заполнения БД.
	AdminEmail    string
	AdminPassword string
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		AppEnv:            os.Getenv("ENV"),
		Port:              os.Getenv("PORT"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		EmailFrom:         os.Getenv("EMAIL_FROM"),
		TelegramToken:     os.Getenv("TELEGRAM_APITOKEN"),
		USDTWalletAddress: os.Getenv("USDT_WALLET_ADDRESS"),
		AppBaseURL:        os.Getenv("APP_BASE_URL"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL не установлена")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET не установлен")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	cfg.ROIRunHour, err = strconv.Atoi(os.Getenv("ROI_RUN_HOUR"))
	if err != nil || cfg.ROIRunHour < 0 || cfg.ROIRunHour > 23 {
		log.Printf("Предупреждение: не удалось прочитать ROI_RUN_HOUR: %v. Установлено в 0 (полночь UTC).", err)
		cfg.ROIRunHour = 0
	}
	cfg.ROIRunMinute, err = strconv.Atoi(os.Getenv("ROI_RUN_MINUTE"))
	if err != nil || cfg.ROIRunMinute < 0 || cfg.ROIRunMinute > 59 {
		log.Printf("Предупреждение: не удалось прочитать ROI_RUN_MINUTE: %v. Установлено в 0.", err)
		cfg.ROIRunMinute = 0
	}

	cfg.SMTPPort, err = strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать SMTP_PORT: %v. Установлено в 587.", err)
		cfg.SMTPPort = 587
	}

	cfg.AdminChatID, err = strconv.ParseInt(os.Getenv("ADMIN_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать ADMIN_CHAT_ID: %v. Уведомления администратора в Telegram отключены.", err)
		cfg.AdminChatID = 0
	}

	if cfg.USDTWalletAddress == "" {
		cfg.USDTWalletAddress = "TXyz123SampleUSDTAddress456789"
	}
	if cfg.AppBaseURL == "" {
		cfg.AppBaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@minex.global"
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD не установлен")
	}

	return cfg, nil
}
