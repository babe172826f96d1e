// Package validation holds the form-level rules shared by the HTTP handlers.
// Messages are French because they are shown to residents as-is.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Error is a user-facing validation failure on a single field.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func fieldError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// IsValidation reports whether err carries a validation failure.
func IsValidation(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

const (
	NameMinLength  = 3
	NameMaxLength  = 15
	NameMaxLetters = 15
	NameMaxDigits  = 3

	TitleMaxLength       = 50
	DescriptionMaxLength = 200
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]*$`)
	letterChars  = regexp.MustCompile(`[a-zA-Z]`)
	digitChars   = regexp.MustCompile(`[0-9]`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
	phonePattern = regexp.MustCompile(`^\d{2}\s\d{3}\s\d{2}\s\d{2}$`)
)

var phonePrefixes = []string{"75", "76", "77", "78"}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fieldError("name", "Le nom est requis.")
	}

	length := utf8.RuneCountInString(name)
	if length < NameMinLength || length > NameMaxLength {
		return fieldError("name", "Le nom doit contenir entre 3 et 15 caractères.")
	}
	if len(letterChars.FindAllString(name, -1)) > NameMaxLetters {
		return fieldError("name", "Le nom peut contenir maximum 15 lettres.")
	}
	if len(digitChars.FindAllString(name, -1)) > NameMaxDigits {
		return fieldError("name", "Le nom peut contenir maximum 3 chiffres.")
	}
	if !namePattern.MatchString(name) {
		return fieldError("name", "Seules les lettres, chiffres, espaces, tirets et underscores sont autorisés.")
	}
	return nil
}

// PhoneDigits strips everything but digits.
func PhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// FormatPhone renders digits as "xx xxx xx xx".
func FormatPhone(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i == 2 || i == 5 || i == 7 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizePhone validates a Senegalese mobile number and returns it in
// display form. An empty input is accepted and returns "".
func NormalizePhone(phone string) (string, error) {
	digits := PhoneDigits(phone)
	if digits == "" {
		return "", nil
	}
	if len(digits) != 9 {
		return "", fieldError("phone", "Le numéro doit être au format xx xxx xx xx (9 chiffres)")
	}

	validPrefix := false
	for _, p := range phonePrefixes {
		if strings.HasPrefix(digits, p) {
			validPrefix = true
			break
		}
	}
	if !validPrefix {
		return "", fieldError("phone", "Le numéro doit commencer par 75, 76, 77 ou 78.")
	}

	formatted := FormatPhone(digits)
	if !phonePattern.MatchString(formatted) {
		return "", fieldError("phone", "Le numéro doit être au format xx xxx xx xx (9 chiffres)")
	}
	return formatted, nil
}

func ValidatePhone(phone string) error {
	_, err := NormalizePhone(phone)
	return err
}

// Required checks that a trimmed value is present and at most max runes long.
func Required(field, label, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fieldError(field, label+" est requis.")
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return fieldError(field, label+" ne doit pas dépasser "+strconv.Itoa(max)+" caractères.")
	}
	return nil
}

// NotInPast rejects dates before the start of the day containing now.
func NotInPast(field string, date, now time.Time) error {
	if date.IsZero() {
		return fieldError(field, "La date est requise.")
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if date.In(now.Location()).Before(today) {
		return fieldError(field, "La date ne peut pas être dans le passé.")
	}
	return nil
}

// OneOf checks value against an allowed set.
func OneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fieldError(field, "Valeur invalide pour "+field+" : "+strings.Join(allowed, ", ")+".")
}

// Location is returned when a coordinate falls outside the neighborhood.
func Location(field string) error {
	return fieldError(field, "Veuillez sélectionner un emplacement dans la zone autorisée.")
}
