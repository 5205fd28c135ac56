package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Minex/internal/db"
	"Minex/internal/models"
)

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

// depsContextKey - ключ для сохранения зависимостей в контексте запроса.
var depsContextKey = &contextKey{"Deps"}

type contextKey struct {
	name string
}

func withDeps(ctx context.Context, deps ApiDependencies) context.Context {
	return context.WithValue(ctx, depsContextKey, deps)
}

func depsFromContext(ctx context.Context) ApiDependencies {
	deps, _ := ctx.Value(depsContextKey).(ApiDependencies)
	return deps
}

// tokenClaims - полезная нагрузка JWT. Роль дублируется в токене, но
// авторизация всегда сверяется со свежей записью пользователя из БД.
type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken выпускает JWT для пользователя со сроком жизни 72 часа.
func GenerateToken(user models.User, secret string) (string, error) {
	claims := tokenClaims{
		UserID: user.UserID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthMiddleware проверяет заголовок Authorization с Bearer-токеном.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Unauthorized: Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims := &tokenClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Printf("AuthMiddleware: невалидный токен: %v", err)
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			// Получаем полную информацию о пользователе из нашей БД
			user, err := db.GetUserByID(claims.UserID)
			if err != nil {
				log.Printf("AuthMiddleware: пользователь %s не найден в БД: %v", claims.UserID, err)
				http.Error(w, "Unauthorized: User not found", http.StatusUnauthorized)
				return
			}
			if !user.IsActive {
				http.Error(w, "Forbidden: Account is deactivated", http.StatusForbidden)
				return
			}

			// Сохраняем пользователя в контексте запроса для последующих обработчиков
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware проверяет, соответствует ли роль пользователя требуемой.
func RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(UserContextKey).(models.User)
			if !ok {
				http.Error(w, "Forbidden: User data not found in context", http.StatusForbidden)
				return
			}

			if user.Role != requiredRole {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// userFromContext возвращает аутентифицированного пользователя запроса.
func userFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(models.User)
	return user, ok
}
