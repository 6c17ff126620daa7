package service

import (
	"context"
	"ctchen222/morpion/internal/game"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 72 * time.Hour

// ErrInvalidToken is returned for a missing, malformed, expired or
// wrongly signed token.
var ErrInvalidToken = errors.New("invalid token")

var (
	// ErrNameTaken is returned when a name was already issued to another
	// client.
	ErrNameTaken = errors.New("name already taken")
	// ErrReservedName is returned for a name equal to the draw marker sent
	// on game_over.
	ErrReservedName = errors.New("name is reserved")
)

// UserService issues and verifies player identities.
type UserService interface {
	GuestLogin(ctx context.Context, name string) (playerID, token string, err error)
	ParseToken(token string) (playerID string, err error)
}

type userService struct {
	secret []byte
	now    func() time.Time

	mu     sync.Mutex
	issued map[string]struct{}
}

// NewUserService creates a UserService signing HS256 tokens with secret.
func NewUserService(secret string) UserService {
	return &userService{secret: []byte(secret), now: time.Now, issued: make(map[string]struct{})}
}

// GuestLogin returns a player id and a token whose subject is that id. The
// id is name when given, "guest-" plus a random suffix otherwise. A name is
// issued once per process.
func (s *userService) GuestLogin(ctx context.Context, name string) (string, string, error) {
	playerID, err := s.claim(name)
	if err != nil {
		return "", "", err
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   playerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		s.release(playerID)
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return playerID, tokenString, nil
}

func (s *userService) claim(name string) (string, error) {
	if strings.EqualFold(name, string(game.Draw)) {
		return "", fmt.Errorf("%w: %s", ErrReservedName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		for {
			name = "guest-" + uuid.New().String()[:8]
			if _, ok := s.issued[name]; !ok {
				break
			}
		}
	} else if _, ok := s.issued[name]; ok {
		return "", fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	s.issued[name] = struct{}{}
	return name, nil
}

func (s *userService) release(name string) {
	s.mu.Lock()
	delete(s.issued, name)
	s.mu.Unlock()
}

// ParseToken verifies token and returns its subject.
func (s *userService) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
