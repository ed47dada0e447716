package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"onsamuse/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid player or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// TokenTTL is how long a household login stays valid
const TokenTTL = 30 * 24 * time.Hour

// AuthService handles household player authentication
type AuthService struct {
	password  string
	jwtSecret []byte
	roster    model.Roster
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(password, secret string, roster model.Roster) *AuthService {
	return &AuthService{
		password:  password,
		jwtSecret: []byte(secret),
		roster:    roster,
		now:       time.Now,
	}
}

// Login checks the household passphrase and returns a token for player
func (s *AuthService) Login(player model.PlayerID, password string) (*model.LoginResponse, error) {
	if !s.roster.Contains(player) {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(player)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:  token,
		Player: player,
	}, nil
}

// GenerateToken creates a signed token for player
func (s *AuthService) GenerateToken(player model.PlayerID) (string, error) {
	now := s.now()
	claims := &model.PlayerClaims{
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(player),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a player JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid || !s.roster.Contains(claims.Player) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
