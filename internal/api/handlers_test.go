package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Minex/internal/config"
	"Minex/internal/models"
)

// stubAuthSeams подменяет функции доступа к БД и восстанавливает их
// после теста. По умолчанию БД пуста, а создание пользователя запрещено.
func stubAuthSeams(t *testing.T) *bool {
	t.Helper()

	origEmail := getUserByEmail
	origCode := getUserByReferralCode
	origCreate := createUser
	origAppend := appendDirectReferral
	t.Cleanup(func() {
		getUserByEmail = origEmail
		getUserByReferralCode = origCode
		createUser = origCreate
		appendDirectReferral = origAppend
	})

	created := false
	getUserByEmail = func(email string) (models.User, error) {
		return models.User{}, sql.ErrNoRows
	}
	getUserByReferralCode = func(code string) (models.User, error) {
		return models.User{}, sql.ErrNoRows
	}
	createUser = func(user models.User) error {
		created = true
		return nil
	}
	appendDirectReferral = func(referrerID, userID string) error {
		return nil
	}
	return &created
}

func postRegister(t *testing.T, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(b))
	req = req.WithContext(withDeps(req.Context(), ApiDependencies{
		Config: &config.Config{JWTSecret: "test-secret"},
	}))
	w := httptest.NewRecorder()
	RegisterHandler(w, req)
	return w
}

func TestRegisterUnknownReferralCodeRejected(t *testing.T) {
	created := stubAuthSeams(t)

	w := postRegister(t, RegisterRequest{
		Email:        "new@example.com",
		Password:     "password123",
		FullName:     "Новый Пользователь",
		ReferralCode: "NOSUCH01",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp jsonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "error", resp.Status)
	require.Equal(t, "Реферальный код не найден", resp.Message)

	// Пользователь не должен быть создан при отклоненном коде.
	require.False(t, *created)
}

func TestRegisterReferralCodeRequired(t *testing.T) {
	created := stubAuthSeams(t)

	w := postRegister(t, RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
		FullName: "Новый Пользователь",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, *created)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	created := stubAuthSeams(t)
	getUserByEmail = func(email string) (models.User, error) {
		return models.User{UserID: "existing", Email: email}, nil
	}

	w := postRegister(t, RegisterRequest{
		Email:        "taken@example.com",
		Password:     "password123",
		ReferralCode: "REF12345",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	require.False(t, *created)
}

func TestRegisterSuccess(t *testing.T) {
	stubAuthSeams(t)

	referrer := models.User{
		UserID:       "referrer-1",
		Email:        "referrer@example.com",
		ReferralCode: "REF12345",
		Level:        2,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	getUserByReferralCode = func(code string) (models.User, error) {
		require.Equal(t, "REF12345", code)
		return referrer, nil
	}

	var createdUser models.User
	createUser = func(user models.User) error {
		createdUser = user
		return nil
	}
	var appendedTo, appended string
	appendDirectReferral = func(referrerID, userID string) error {
		appendedTo, appended = referrerID, userID
		return nil
	}

	w := postRegister(t, RegisterRequest{
		Email:        "New@Example.com",
		Password:     "password123",
		FullName:     "Новый Пользователь",
		ReferralCode: "REF12345",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string       `json:"status"`
		Data   AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.NotEmpty(t, resp.Data.Token)

	// Email нормализован, новый пользователь привязан к пригласившему.
	require.Equal(t, "new@example.com", createdUser.Email)
	require.Equal(t, referrer.UserID, createdUser.ReferredBy.String)
	require.True(t, createdUser.ReferredBy.Valid)
	require.Equal(t, 1, createdUser.Level)
	require.Equal(t, referrer.UserID, appendedTo)
	require.Equal(t, createdUser.UserID, appended)
}

func TestAdminGetWithdrawalsHandler(t *testing.T) {
	orig := getAllWithdrawals
	t.Cleanup(func() { getAllWithdrawals = orig })

	getAllWithdrawals = func() ([]models.Withdrawal, error) {
		return []models.Withdrawal{
			{WithdrawalID: "w-1", UserID: "u-1", Amount: 150, Status: "pending"},
			{WithdrawalID: "w-2", UserID: "u-2", Amount: 90, Status: "approved"},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/withdrawals", nil)
	w := httptest.NewRecorder()
	AdminGetWithdrawalsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string              `json:"status"`
		Data   []models.Withdrawal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 2)
	require.Equal(t, "w-1", resp.Data[0].WithdrawalID)
}
