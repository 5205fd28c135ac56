package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
)

// encryptionKey - глобальный ключ AES-256; заполняется в InitEncryptionKey.
var encryptionKey []byte

// InitEncryptionKey читает ключ из WALLET_ENCRYPTION_KEY_HEX (32 байта в HEX).
// Вызывается один раз при старте; без ключа приложение работать не может.
func InitEncryptionKey() error {
	keyHex := os.Getenv("WALLET_ENCRYPTION_KEY_HEX")
	if keyHex == "" {
		log.Println("КРИТИЧЕСКАЯ ОШИБКА: Ключ шифрования WALLET_ENCRYPTION_KEY_HEX не установлен в переменных окружения.")
		return fmt.Errorf("ключ шифрования WALLET_ENCRYPTION_KEY_HEX не установлен")
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		log.Printf("КРИТИЧЕСКАЯ ОШИБКА: Не удалось декодировать WALLET_ENCRYPTION_KEY_HEX: %v", err)
		return fmt.Errorf("некорректный формат ключа шифрования (не HEX): %w", err)
	}
	if len(key) != 32 {
		log.Printf("КРИТИЧЕСКАЯ ОШИБКА: Длина ключа шифрования должна быть 32 байта (64 HEX символа), получено %d байт.", len(key))
		return fmt.Errorf("некорректная длина ключа шифрования, требуется 32 байта, получено %d", len(key))
	}

	encryptionKey = key
	log.Println("Ключ шифрования успешно инициализирован.")
	return nil
}

func walletAEAD() (cipher.AEAD, error) {
	if len(encryptionKey) == 0 {
		return nil, fmt.Errorf("ключ шифрования не инициализирован")
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания шифра: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}
	return gcm, nil
}

// EncryptWalletAddress шифрует адрес кошелька AES-256-GCM и возвращает
// HEX-строку, в начале которой лежит nonce.
func EncryptWalletAddress(plainTextAddress string) (string, error) {
	gcm, err := walletAEAD()
	if err != nil {
		log.Printf("EncryptWalletAddress: %v", err)
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		log.Printf("EncryptWalletAddress: ошибка генерации nonce: %v", err)
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	cipherText := gcm.Seal(nonce, nonce, []byte(plainTextAddress), nil)
	return hex.EncodeToString(cipherText), nil
}

// DecryptWalletAddress расшифровывает HEX-строку, созданную
// EncryptWalletAddress, и возвращает исходный адрес.
func DecryptWalletAddress(cipherTextAddressHex string) (string, error) {
	gcm, err := walletAEAD()
	if err != nil {
		log.Printf("DecryptWalletAddress: %v", err)
		return "", err
	}

	cipherText, err := hex.DecodeString(cipherTextAddressHex)
	if err != nil {
		log.Printf("DecryptWalletAddress: ошибка декодирования HEX: %v", err)
		return "", fmt.Errorf("не удалось декодировать зашифрованный адрес из hex: %w", err)
	}
	if len(cipherText) < gcm.NonceSize() {
		log.Println("DecryptWalletAddress: размер зашифрованного текста меньше размера nonce.")
		return "", fmt.Errorf("размер зашифрованного текста меньше размера nonce")
	}

	nonce, sealed := cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():]
	plainText, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		log.Printf("DecryptWalletAddress: не удалось расшифровать адрес (неверный ключ или поврежденные данные): %v", err)
		return "", fmt.Errorf("ошибка дешифрования адреса кошелька: %w", err)
	}
	return string(plainText), nil
}
