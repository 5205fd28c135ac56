// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// InitDB инициализирует соединение с базой данных и выполняет миграции.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("ошибка парсинга DATABASE_URL: %v", err)
	}
	query := parsedURL.Query()
	// Пример: query.Set("sslmode", "require") при работе с управляемым Postgres.
	parsedURL.RawQuery = query.Encode()
	finalURL := parsedURL.String()

	DB, err = sql.Open("postgres", finalURL)
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}
	log.Println("Успешное подключение к базе данных.")

	// Шаг 1: создаем таблицы, если их нет.
	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %v", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            full_name TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            level INTEGER NOT NULL DEFAULT 1,
            total_investment DOUBLE PRECISION NOT NULL DEFAULT 0,
            wallet_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
            roi_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
            commission_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
            referral_code TEXT UNIQUE NOT NULL,
            referred_by TEXT REFERENCES users(user_id),
            direct_referrals TEXT[] NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_roi_date TIMESTAMPTZ,
            is_active BOOLEAN NOT NULL DEFAULT TRUE
        );
        CREATE TABLE IF NOT EXISTS investment_packages (
            package_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            level INTEGER NOT NULL,
            min_investment DOUBLE PRECISION NOT NULL DEFAULT 0,
            max_investment DOUBLE PRECISION NOT NULL DEFAULT 0,
            daily_roi DOUBLE PRECISION NOT NULL DEFAULT 0,
            annual_roi DOUBLE PRECISION NOT NULL DEFAULT 0,
            duration_days INTEGER NOT NULL DEFAULT 365,
            direct_required INTEGER NOT NULL DEFAULT 0,
            commission_lv_a DOUBLE PRECISION,
            commission_lv_b DOUBLE PRECISION,
            commission_lv_c DOUBLE PRECISION,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS stakes (
            stake_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(user_id),
            package_id TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL,
            daily_roi DOUBLE PRECISION NOT NULL,
            duration_days INTEGER NOT NULL,
            start_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            end_date TIMESTAMPTZ NOT NULL,
            status TEXT NOT NULL DEFAULT 'active',
            total_earned DOUBLE PRECISION NOT NULL DEFAULT 0,
            capital_returned BOOLEAN NOT NULL DEFAULT FALSE,
            last_yield_date TIMESTAMPTZ
        );
        CREATE TABLE IF NOT EXISTS commissions (
            commission_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            from_user_id TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL,
            percentage DOUBLE PRECISION NOT NULL,
            depth INTEGER NOT NULL,
            source_type TEXT NOT NULL,
            stake_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS roi_transactions (
            transaction_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            stake_id TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL,
            roi_percentage DOUBLE PRECISION NOT NULL,
            auto_distributed BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS deposits (
            deposit_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(user_id),
            amount DOUBLE PRECISION NOT NULL,
            payment_method TEXT NOT NULL,
            transaction_hash TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            approved_at TIMESTAMPTZ,
            approved_by TEXT,
            rejection_reason TEXT
        );
        CREATE TABLE IF NOT EXISTS withdrawals (
            withdrawal_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(user_id),
            amount DOUBLE PRECISION NOT NULL,
            wallet_address_enc TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            approved_at TIMESTAMPTZ,
            approved_by TEXT,
            transaction_hash TEXT,
            rejection_reason TEXT
        );
        CREATE TABLE IF NOT EXISTS system_logs (
            log_id TEXT PRIMARY KEY,
            type TEXT NOT NULL,
            run_time TIMESTAMPTZ NOT NULL,
            stakes_processed INTEGER NOT NULL DEFAULT 0,
            total_roi_distributed DOUBLE PRECISION NOT NULL DEFAULT 0,
            users_notified INTEGER NOT NULL DEFAULT 0,
            stakes_completed INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL
        );
        CREATE TABLE IF NOT EXISTS email_logs (
            email_id TEXT PRIMARY KEY,
            recipient TEXT NOT NULL,
            subject TEXT NOT NULL,
            status TEXT NOT NULL,
            error TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_stakes_status ON stakes(status);
        CREATE INDEX IF NOT EXISTS idx_commissions_user ON commissions(user_id);
        CREATE INDEX IF NOT EXISTS idx_roi_tx_user ON roi_transactions(user_id);
    `
	if _, err = tx.Exec(createTablesSQL); err != nil {
		return fmt.Errorf("ошибка создания таблиц: %v", err)
	}

	// Шаг 2: миграции для новых колонок пакетов. Исторически проценты
	// хранились в commission_lv_a/b/c; новые колонки покрывают глубины 2-6
	// и требования к команде по уровням. Старые колонки остаются для
	// нормализации при чтении.
	alterSQL := `
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS level_2_required INTEGER NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS level_3_required INTEGER NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS level_4_required INTEGER NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS level_5_required INTEGER NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS level_6_required INTEGER NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS commission_direct DOUBLE PRECISION NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS profit_share_level_2 DOUBLE PRECISION NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS profit_share_level_3 DOUBLE PRECISION NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS profit_share_level_4 DOUBLE PRECISION NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS profit_share_level_5 DOUBLE PRECISION NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS profit_share_level_6 DOUBLE PRECISION NOT NULL DEFAULT 0;
        ALTER TABLE investment_packages ADD COLUMN IF NOT EXISTS enabled_levels INTEGER[] NOT NULL DEFAULT '{1,2,3,4,5,6}';
    `
	if _, err = tx.Exec(alterSQL); err != nil {
		return fmt.Errorf("ошибка миграции колонок investment_packages: %v", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка коммита транзакции создания таблиц: %v", err)
	}

	log.Println("Схема базы данных проверена и актуальна.")
	return nil
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Printf("CloseDB: ошибка закрытия соединения с БД: %v", err)
		}
	}
}
