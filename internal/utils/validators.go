package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// emailRegex (не экспортируется) используется внутри ValidateEmail.
// emailRegex (not exported) is used inside ValidateEmail.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail проверяет и нормализует email-адрес.
// Возвращает адрес в нижнем регистре или ошибку.
// ValidateEmail checks and normalizes an email address.
func ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email не указан")
	}
	if !emailRegex.MatchString(email) {
		return "", fmt.Errorf("некорректный формат email: '%s'", email)
	}
	return email, nil
}

// ValidatePassword проверяет минимальные требования к паролю.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать не менее 8 символов")
	}
	return nil
}

// ValidateAmount проверяет, что денежная сумма положительна и находится в
// разумных пределах. Верхняя граница защищает от опечаток вида лишнего нуля.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("сумма должна быть положительной, получено: %.2f", amount)
	}
	if amount > 10_000_000 {
		return fmt.Errorf("сумма %.2f превышает максимально допустимую", amount)
	}
	return nil
}

// ValidateWalletAddress проверяет базовый формат адреса кошелька (длина и
// допустимые символы). Строгая проверка по сети получателя не выполняется.
// ValidateWalletAddress checks the basic format of a wallet address.
func ValidateWalletAddress(address string) error {
	address = strings.TrimSpace(address)
	if len(address) < 20 || len(address) > 100 {
		return fmt.Errorf("длина адреса кошелька должна быть от 20 до 100 символов")
	}
	if !regexp.MustCompile(`^[a-zA-Z0-9]+$`).MatchString(address) {
		return fmt.Errorf("адрес кошелька должен содержать только буквы и цифры")
	}
	return nil
}
