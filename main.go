package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"Minex/internal/api"
	"Minex/internal/config"
	"Minex/internal/db"
	"Minex/internal/distribution"
	"Minex/internal/notify"
	"Minex/internal/utils"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := utils.InitEncryptionKey(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать ключ шифрования: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	if err := db.EnsureDefaultData(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Критическая ошибка: не удалось заполнить стартовые данные: %v", err)
	}

	// --- Уведомления: почта пользователям, Telegram администратору ---
	var mailer *notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = &notify.Mailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}
	} else {
		log.Println("Предупреждение: SMTP не настроен, почтовые уведомления отключены.")
	}

	adminBot, err := notify.NewAdminBot(cfg.TelegramToken, cfg.AdminChatID)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}
	if adminBot == nil {
		log.Println("Предупреждение: Telegram не настроен, уведомления администратора отключены.")
	}

	notifier := notify.NewService(mailer, adminBot)
	defer notifier.Stop()

	// --- Движок распределения и планировщик ---
	store := db.Store{}
	distributor := &distribution.Distributor{Store: store, Notifier: notifier}
	scheduler := distribution.NewScheduler(store, distributor, notifier)
	scheduler.Start(cfg.ROIRunHour, cfg.ROIRunMinute)
	defer scheduler.Stop()

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := api.ApiDependencies{
		Config:    cfg,
		Scheduler: scheduler,
		Distrib:   distributor,
		Notifier:  notifier,
	}
	api.SetupRoutes(apiRouter, apiDeps)

	// Обработка запроса иконки, чтобы избежать ошибки 404 в логах
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log.Printf("Запуск HTTP-сервера на порту %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
	}
}
