package validation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "Awa Ndiaye", ""},
		{"valid with digits and dash", "moussa-99_x", ""},
		{"empty", "   ", "Le nom est requis."},
		{"too short", "ab", "Le nom doit contenir entre 3 et 15 caractères."},
		{"too long", "abcdefghijklmnop", "Le nom doit contenir entre 3 et 15 caractères."},
		{"too many digits", "ab1234", "Le nom peut contenir maximum 3 chiffres."},
		{"accented letters rejected", "Aïssatou", "Seules les lettres, chiffres, espaces, tirets et underscores sont autorisés."},
		{"punctuation rejected", "bob!", "Seules les lettres, chiffres, espaces, tirets et underscores sont autorisés."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.True(t, IsValidation(err))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"771234567", "77 123 45 67", false},
		{"77 123 45 67", "77 123 45 67", false},
		{"75-000-00-00", "75 000 00 00", false},
		{"", "", false},
		{"701234567", "", true},
		{"77123456", "", true},
		{"7712345678", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone(""))
	assert.NoError(t, ValidatePhone("78 000 00 00"))

	err := ValidatePhone("761")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestFormatPhone_Partial(t *testing.T) {
	assert.Equal(t, "77 12", FormatPhone("7712"))
	assert.Equal(t, "77 123 4", FormatPhone("771234"))
	assert.Equal(t, "", FormatPhone(""))
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("title", "Le titre", "Lampadaire cassé", TitleMaxLength))

	err := Required("title", "Le titre", "  ", TitleMaxLength)
	require.Error(t, err)
	assert.Equal(t, "Le titre est requis.", err.Error())

	long := fmt.Sprintf("%051d", 0)
	err = Required("title", "Le titre", long, TitleMaxLength)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "50")
}

func TestNotInPast(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	assert.NoError(t, NotInPast("date", now, now))
	assert.NoError(t, NotInPast("date", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), now), "earlier today is allowed")
	assert.NoError(t, NotInPast("date", now.AddDate(0, 0, 3), now))
	assert.Error(t, NotInPast("date", now.AddDate(0, 0, -1), now))
	assert.Error(t, NotInPast("date", time.Time{}, now))
}

func TestOneOf(t *testing.T) {
	allowed := []string{"Propreté", "Sécurité", "Autre"}
	assert.NoError(t, OneOf("category", "Autre", allowed))
	assert.Error(t, OneOf("category", "autre", allowed))
}

func TestIsValidation(t *testing.T) {
	wrapped := fmt.Errorf("create report: %w", Location("location"))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsValidation(errors.New("boom")))
}
