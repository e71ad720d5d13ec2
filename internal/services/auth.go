package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/LooWze/LooWzeIA/internal/metrics"
	"github.com/LooWze/LooWzeIA/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	DefaultTokenTTL = 24 * time.Hour
	tokenType       = "bearer"
	knownUsersSize  = 1024
)

// AuthService registers users and issues HS256 bearer tokens whose subject is
// the user id.
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	// knownUsers remembers ids confirmed to exist so authenticated requests
	// skip the users table.
	knownUsers *lru.Cache[uint, struct{}]
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	cache, err := lru.New[uint, struct{}](knownUsersSize)
	if err != nil {
		return nil, fmt.Errorf("create user cache: %w", err)
	}
	return &AuthService{
		db:         db,
		secret:     []byte(secret),
		ttl:        ttl,
		now:        time.Now,
		knownUsers: cache,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. Emails are compared case-insensitively.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "taken").Inc()
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "taken").Inc()
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return &user, nil
}

// Login checks the password and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failed").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failed").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.knownUsers.Add(user.ID, struct{}{})
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return &models.TokenResponse{AccessToken: token, TokenType: tokenType}, nil
}

// IssueToken signs a token for userID valid for the configured TTL.
func (s *AuthService) IssueToken(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the signature and expiry and returns the user id.
func (s *AuthService) ParseToken(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Authenticate parses the token and checks that its user still exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (uint, error) {
	userID, err := s.ParseToken(tokenString)
	if err != nil {
		return 0, err
	}
	if s.knownUsers.Contains(userID) {
		return userID, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("find user: %w", err)
	}
	if count == 0 {
		return 0, ErrInvalidToken
	}
	s.knownUsers.Add(userID, struct{}{})
	return userID, nil
}
