package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/wikibeerdia/backend/internal/models"
	apperrors "github.com/wikibeerdia/backend/pkg/errors"
	"github.com/wikibeerdia/backend/pkg/validator"
)

// MinPasswordLength is the lower bound of the password strength policy.
const MinPasswordLength = 8

// ValidateSignup runs every signup rule and collects all failures rather than
// short-circuiting on the first. Uniqueness checks are read-only queries; the
// check-then-create gap under concurrent signups is a known limitation.
func ValidateSignup(ctx context.Context, db *gorm.DB, email, username, password string) ([]apperrors.FieldError, error) {
	var fields []apperrors.FieldError

	if !validator.IsEmail(email) {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "Email is invalid"})
	}

	taken, err := exists(ctx, db, "email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("validate signup: check email: %w", err)
	}
	if taken {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "Email already exists"})
	}

	if strings.TrimSpace(username) == "" {
		fields = append(fields, apperrors.FieldError{Field: "username", Message: "Username is required"})
	}

	taken, err = exists(ctx, db, "username = ?", username)
	if err != nil {
		return nil, fmt.Errorf("validate signup: check username: %w", err)
	}
	if taken {
		fields = append(fields, apperrors.FieldError{Field: "username", Message: "Username already exists"})
	}

	if !isStrongPassword(password) {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "Password not strong enough."})
	}

	return fields, nil
}

// ValidateLogin only checks that both fields are present. Account existence is
// resolved later during authentication.
func ValidateLogin(identifier, password string) []apperrors.FieldError {
	var fields []apperrors.FieldError

	if strings.TrimSpace(identifier) == "" {
		fields = append(fields, apperrors.FieldError{Field: "identifier", Message: "Email/Username is required"})
	}
	if password == "" {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "Password is required"})
	}

	return fields
}

func exists(ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var user models.User
	err := db.WithContext(ctx).Select("id").Where(query, args...).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// isStrongPassword enforces minimum length plus at least one lowercase letter,
// uppercase letter, digit, and symbol.
func isStrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	return lower && upper && digit && symbol
}
