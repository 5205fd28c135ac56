package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"Minex/internal/constants"
	"Minex/internal/db"
	"Minex/internal/models"
	"Minex/internal/utils"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RegisterRequest - структура запроса на регистрацию.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	ReferralCode string `json:"referral_code"`
}

// LoginRequest - структура запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse - ответ на успешную регистрацию или вход.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Функции доступа к БД; подменяются в тестах.
var (
	getUserByEmail        = db.GetUserByEmail
	getUserByReferralCode = db.GetUserByReferralCode
	createUser            = db.CreateUser
	appendDirectReferral  = db.AppendDirectReferral
)

// --- Вспомогательные функции для JSON-ответов ---
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// RegisterHandler регистрирует нового пользователя. Регистрация возможна
// только по действующему реферальному коду: дерево приглашений не имеет
// свободных корней, кроме административного.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	email, err := utils.ValidateEmail(req.Email)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ReferralCode == "" {
		writeJSONError(w, http.StatusBadRequest, "Реферальный код обязателен")
		return
	}

	if _, err := getUserByEmail(email); err == nil {
		writeJSONError(w, http.StatusConflict, "Пользователь с таким email уже существует")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("RegisterHandler: ошибка проверки email %s: %v", email, err)
		writeJSONError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	referrer, err := getUserByReferralCode(req.ReferralCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusBadRequest, "Реферальный код не найден")
			return
		}
		log.Printf("RegisterHandler: ошибка поиска реферального кода %s: %v", req.ReferralCode, err)
		writeJSONError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("RegisterHandler: ошибка хеширования пароля: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: string(passwordHash),
		Role:         constants.ROLE_USER,
		Level:        1,
		ReferralCode: utils.GenerateReferralCode(),
		ReferredBy:   sql.NullString{String: referrer.UserID, Valid: true},
		IsActive:     true,
	}

	if err := createUser(user); err != nil {
		log.Printf("RegisterHandler: ошибка создания пользователя %s: %v", email, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось создать пользователя")
		return
	}
	if err := appendDirectReferral(referrer.UserID, user.UserID); err != nil {
		// Пользователь уже создан, связь восстановима по referred_by.
		log.Printf("RegisterHandler: не удалось добавить %s в прямые рефералы %s: %v", user.UserID, referrer.UserID, err)
	}

	deps := depsFromContext(r.Context())
	token, err := GenerateToken(user, deps.Config.JWTSecret)
	if err != nil {
		log.Printf("RegisterHandler: ошибка выпуска токена: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	log.Printf("Зарегистрирован новый пользователь %s (пригласил %s).", email, referrer.Email)
	writeJSONSuccess(w, "Регистрация успешна", AuthResponse{Token: token, User: user})
}

// LoginHandler аутентифицирует пользователя по email и паролю.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	email, err := utils.ValidateEmail(req.Email)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := getUserByEmail(email)
	if err != nil {
		// Одинаковый ответ для неизвестного email и неверного пароля.
		writeJSONError(w, http.StatusUnauthorized, "Неверный email или пароль")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "Неверный email или пароль")
		return
	}
	if !user.IsActive {
		writeJSONError(w, http.StatusForbidden, "Аккаунт деактивирован")
		return
	}

	deps := depsFromContext(r.Context())
	token, err := GenerateToken(user, deps.Config.JWTSecret)
	if err != nil {
		log.Printf("LoginHandler: ошибка выпуска токена для %s: %v", email, err)
		writeJSONError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSONSuccess(w, "Вход выполнен", AuthResponse{Token: token, User: user})
}

// GetSettingsHandler возвращает публичные настройки платформы.
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsFromContext(r.Context())
	writeJSONSuccess(w, "", map[string]interface{}{
		"usdt_wallet_address": deps.Config.USDTWalletAddress,
		"payment_methods":     []string{constants.PAYMENT_METHOD_USDT, constants.PAYMENT_METHOD_BANK},
	})
}

// GetPackagesHandler возвращает активные инвестиционные пакеты по возрастанию
// уровня. Публичный маршрут: список пакетов показывается до регистрации.
func GetPackagesHandler(w http.ResponseWriter, r *http.Request) {
	packages, err := db.GetActivePackagesAsc()
	if err != nil {
		log.Printf("GetPackagesHandler: ошибка загрузки пакетов: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить пакеты")
		return
	}
	writeJSONSuccess(w, "", packages)
}
