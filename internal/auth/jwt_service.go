package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token lifetimes. Remembered sessions stay valid for 60 days,
// everything else expires after two hours.
const (
	DefaultSessionTTL  = 2 * time.Hour
	RememberSessionTTL = 60 * 24 * time.Hour
)

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret      string
	Issuer      string
	SessionTTL  time.Duration
	RememberTTL time.Duration
	Clock       func() time.Time
}

// Claims represents the custom claims embedded in issued session tokens.
type Claims struct {
	UserID     string `json:"uid"`
	Identifier string `json:"identifier,omitempty"`
	jwt.RegisteredClaims
}

// SessionInput holds the parameters used when issuing a new session token.
type SessionInput struct {
	UserID     string
	Identifier string
	Remember   bool
}

// JWTService issues and verifies self-contained session credentials. Tokens
// are stateless: there is no server-side session record and no revocation
// before expiry.
type JWTService struct {
	secret      []byte
	issuer      string
	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewJWTService constructs a JWTService. The signing secret is mandatory.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	rememberTTL := cfg.RememberTTL
	if rememberTTL <= 0 {
		rememberTTL = RememberSessionTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		now:         now,
	}, nil
}

// IssueSession signs a session token carrying the account identity.
func (s *JWTService) IssueSession(input SessionInput) (string, error) {
	if input.UserID == "" {
		return "", errors.New("jwt: user id is required")
	}

	now := s.now()
	ttl := s.sessionTTL
	if input.Remember {
		ttl = s.rememberTTL
	}

	claims := &Claims{
		UserID:     input.UserID,
		Identifier: input.Identifier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// VerifySession parses and validates a signed session token, returning the
// application claims. Verification is a pure signature check with no I/O.
func (s *JWTService) VerifySession(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errors.New("jwt: invalid issuer")
	}

	if claims.UserID == "" {
		return nil, errors.New("jwt: missing user id claim")
	}

	return &claims, nil
}
