package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	email, err := ValidateEmail("  User@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", email)

	_, err = ValidateEmail("")
	require.Error(t, err)
	_, err = ValidateEmail("не-почта")
	require.Error(t, err)
	_, err = ValidateEmail("user@")
	require.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("длинный-пароль"))
	require.Error(t, ValidatePassword("short"))
}

func TestValidateAmount(t *testing.T) {
	require.NoError(t, ValidateAmount(50))
	require.Error(t, ValidateAmount(0))
	require.Error(t, ValidateAmount(-10))
	require.Error(t, ValidateAmount(20_000_000))
}

func TestValidateWalletAddress(t *testing.T) {
	require.NoError(t, ValidateWalletAddress("TXyz123SampleUSDTAddress456789"))
	require.Error(t, ValidateWalletAddress("short"))
	require.Error(t, ValidateWalletAddress(strings.Repeat("a", 150)))
	require.Error(t, ValidateWalletAddress("адрес-с-недопустимыми-символами!"))
}

func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode()
	require.Len(t, code, 8)
	require.Equal(t, strings.ToUpper(code), code)

	// Два подряд сгенерированных кода не совпадают.
	require.NotEqual(t, code, GenerateReferralCode())
}

func TestGenerateReferralLink(t *testing.T) {
	link, err := GenerateReferralLink("https://minex.global/", "ABCD1234")
	require.NoError(t, err)
	require.Equal(t, "https://minex.global/register?ref=ABCD1234", link)

	_, err = GenerateReferralLink("", "ABCD1234")
	require.Error(t, err)
	_, err = GenerateReferralLink("https://minex.global", "")
	require.Error(t, err)
}
