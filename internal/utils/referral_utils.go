package utils

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// GenerateReferralCode генерирует короткий реферальный код для нового
// пользователя. Первые восемь символов UUID в верхнем регистре достаточно
// уникальны при нашем объеме регистраций, коллизия ловится уникальным
// индексом в БД на уровне вставки.
func GenerateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}

// GenerateReferralLink генерирует реферальную ссылку для пользователя.
// baseURL должен передаваться, так как это конфигурационное значение.
func GenerateReferralLink(baseURL, referralCode string) (string, error) {
	if baseURL == "" {
		log.Println("GenerateReferralLink: baseURL не предоставлен.")
		return "", fmt.Errorf("базовый адрес приложения не настроен")
	}
	if referralCode == "" {
		log.Println("GenerateReferralLink: пустой реферальный код.")
		return "", fmt.Errorf("пустой реферальный код")
	}
	return fmt.Sprintf("%s/register?ref=%s", strings.TrimRight(baseURL, "/"), referralCode), nil
}

// GenerateQRCode генерирует QR-код для реферальной ссылки.
func GenerateQRCode(baseURL, referralCode string) ([]byte, error) {
	link, err := GenerateReferralLink(baseURL, referralCode)
	if err != nil {
		log.Printf("GenerateQRCode: ошибка генерации реферальной ссылки для QR-кода (код %s): %v", referralCode, err)
		return nil, err
	}

	// qrcode.Medium - уровень коррекции ошибок, 256 - размер QR-кода в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GenerateQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
