package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	iauth "github.com/wikibeerdia/backend/internal/auth"
	"github.com/wikibeerdia/backend/internal/models"
	"github.com/wikibeerdia/backend/pkg/crypto"
	apperrors "github.com/wikibeerdia/backend/pkg/errors"
	"github.com/wikibeerdia/backend/pkg/mail"
)

const (
	defaultVerificationExpiry     = 24 * time.Hour
	defaultVerificationTokenBytes = 16
)

// AccountOption customises the AccountService.
type AccountOption func(*AccountService)

// WithVerificationBaseURL sets the base URL used in confirmation links.
func WithVerificationBaseURL(url string) AccountOption {
	return func(s *AccountService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithVerificationExpiry overrides the verification token lifetime.
func WithVerificationExpiry(d time.Duration) AccountOption {
	return func(s *AccountService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithClock injects a custom time source.
func WithClock(clock func() time.Time) AccountOption {
	return func(s *AccountService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AccountService owns the credential lifecycle: registration, email
// verification, and password authentication.
type AccountService struct {
	db      *gorm.DB
	jwt     *iauth.JWTService
	mailer  mail.Mailer
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

// NewAccountService constructs an AccountService with the provided dependencies.
func NewAccountService(db *gorm.DB, jwt *iauth.JWTService, mailer mail.Mailer, opts ...AccountOption) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("account service: jwt service is required")
	}

	service := &AccountService{
		db:     db,
		jwt:    jwt,
		mailer: mailer,
		expiry: defaultVerificationExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RegisterInput captures the raw signup fields.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register validates the signup input, persists a new unverified account, and
// issues a verification token delivered by email. The steps are sequential and
// not transactional: a failure after the account is persisted leaves an
// unverifiable account behind, matching the documented no-rollback policy.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	fields, err := ValidateSignup(ctx, s.db, input.Email, input.Username, input.Password)
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	now := s.now()
	user := &models.User{
		Email:               input.Email,
		Username:            input.Username,
		Password:            hashed,
		IsVerified:          false,
		PasswordLastUpdated: now,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.Wrap(err, "create account")
	}

	token, err := crypto.GenerateToken(defaultVerificationTokenBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "generate verification token")
	}

	verification := models.VerificationToken{
		UserID:    user.ID,
		TokenHash: tokenHash(token),
		ExpiresAt: now.Add(s.expiry),
	}
	if err := s.db.WithContext(ctx).Create(&verification).Error; err != nil {
		return nil, apperrors.Wrap(err, "create verification token")
	}

	if err := s.sendVerificationMail(ctx, user.Email, token); err != nil {
		return nil, apperrors.Wrap(err, "send verification email")
	}

	return user, nil
}

// VerifyResult is the tagged outcome of an email verification attempt.
// Expected negative outcomes (unknown token, missing owner, already verified)
// are data, not errors.
type VerifyResult struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func verifyFailure(message string) VerifyResult {
	return VerifyResult{Result: false, Message: message, Data: "token"}
}

// VerifyEmail consumes a verification token, marking the owning account as
// verified. Only unexpected store failures surface as errors.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (VerifyResult, error) {
	var verification models.VerificationToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash(token)).
		Take(&verification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return verifyFailure("We were unable to find a valid token. Your token may have expired"), nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("account service: find token: %w", err)
	}

	if verification.ExpiresAt.Before(s.now()) {
		return verifyFailure("We were unable to find a valid token. Your token may have expired"), nil
	}

	var user models.User
	err = s.db.WithContext(ctx).Take(&user, "id = ?", verification.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return verifyFailure("We were unable to find a user for this token."), nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("account service: find user: %w", err)
	}

	if user.IsVerified {
		return verifyFailure("This user has already been verified"), nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("is_verified", true).Error; err != nil {
		return VerifyResult{}, fmt.Errorf("account service: mark verified: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&verification).Error; err != nil {
		return VerifyResult{}, fmt.Errorf("account service: consume token: %w", err)
	}

	return VerifyResult{Result: true, Message: "User has been verified", Data: "token"}, nil
}

// LoginResult carries the issued session credential.
type LoginResult struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	OTPEnabled bool   `json:"otpEnabled"`
}

// AuthenticateInput captures the raw login fields.
type AuthenticateInput struct {
	Identifier string
	Password   string
	Remember   bool
}

// Authenticate checks the identifier/password pair and issues a session token.
// Unknown identifier and wrong password both map to the same 401 so the
// response does not reveal which part was wrong.
func (s *AccountService) Authenticate(ctx context.Context, input AuthenticateInput) (LoginResult, error) {
	if fields := ValidateLogin(input.Identifier, input.Password); len(fields) > 0 {
		return LoginResult{}, apperrors.NewValidation(fields)
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", input.Identifier, input.Identifier).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, apperrors.Wrap(err, "query account")
	}

	if !crypto.VerifyPassword(user.Password, input.Password) {
		return LoginResult{}, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.IssueSession(iauth.SessionInput{
		UserID:     user.ID,
		Identifier: input.Identifier,
		Remember:   input.Remember,
	})
	if err != nil {
		return LoginResult{}, apperrors.Wrap(err, "issue session")
	}

	return LoginResult{
		Token:      token,
		UserID:     user.ID,
		OTPEnabled: user.OTPEnabled,
	}, nil
}

func (s *AccountService) sendVerificationMail(ctx context.Context, email, token string) error {
	if s.mailer == nil {
		return nil
	}

	link := token
	if s.baseURL != "" {
		link = fmt.Sprintf("%s/confirmation/%s", s.baseURL, token)
	}

	message := mail.Message{
		To:      []string{email},
		Subject: "Verify your email",
		Body:    fmt.Sprintf(`Hello,<br>Please verify your account by clicking the link: <a href="%s">%s</a>`, link, link),
	}

	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		return err
	}
	return nil
}

func tokenHash(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
