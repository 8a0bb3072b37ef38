package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

// Service is the admin authentication gate: a single password checked
// against a bcrypt hash, exchanged for a short-lived HS256 token. Sign-out
// is a client-side token drop; the service is stateless.
type Service struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
}

func NewService(passwordHash, secret string, ttl time.Duration) (*Service, error) {
	if passwordHash == "" || secret == "" {
		return nil, errors.New("auth: password hash and jwt secret are required")
	}
	return &Service{passwordHash: []byte(passwordHash), secret: []byte(secret), ttl: ttl}, nil
}

func (s *Service) SignIn(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", utils.ErrUnauthorized
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) Verify(tokenString string) error {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return utils.ErrUnauthorized
	}
	return nil
}

// Middleware guards admin routes with a Bearer token check.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if token == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "missing auth")
		}
		token = strings.TrimPrefix(token, "Bearer ")
		if err := s.Verify(token); err != nil {
			return utils.JSONError(c, fiber.StatusUnauthorized, "invalid token")
		}
		return c.Next()
	}
}
