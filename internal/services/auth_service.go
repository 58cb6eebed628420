package services

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AdminSubject is the token subject used for the configured admin account.
const AdminSubject = "admin"

type AuthService struct {
	secretKey         []byte
	tokenTTL          time.Duration
	adminUsername     string
	adminPasswordHash []byte
	logger            zerolog.Logger
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService builds the token issuer. Without a secret a random one is
// generated, so tokens do not survive a restart.
func NewAuthService(secret string, tokenTTL time.Duration, adminUsername, adminPasswordHash string, logger zerolog.Logger) *AuthService {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			logger.Fatal().Err(err).Msg("Failed to generate JWT secret")
		}
		logger.Warn().Msg("JWT_SECRET not set, using a random key for this process")
	}
	if adminPasswordHash == "" {
		logger.Warn().Msg("ADMIN_PASSWORD_HASH not set, admin login is disabled")
	}

	return &AuthService{
		secretKey:         key,
		tokenTTL:          tokenTTL,
		adminUsername:     adminUsername,
		adminPasswordHash: []byte(adminPasswordHash),
		logger:            logger,
	}
}

func (s *AuthService) GenerateToken(userID string, role models.UserRole) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", err
	}
	return tokenString, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// RefreshToken issues a fresh token carrying the same identity.
func (s *AuthService) RefreshToken(claims *Claims) (string, error) {
	return s.GenerateToken(claims.UserID, models.UserRole(claims.Role))
}

// AdminLogin checks the configured admin credentials and returns an admin token.
func (s *AuthService) AdminLogin(username, password string) (string, error) {
	if len(s.adminPasswordHash) == 0 {
		return "", apperr.New(apperr.KindUnauthorized, "admin login is disabled")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password))
	if !userOK || passErr != nil {
		s.logger.Warn().Str("username", username).Msg("Failed admin login attempt")
		return "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	s.logger.Info().Msg("Admin logged in")
	return s.GenerateToken(AdminSubject, models.RoleAdmin)
}
