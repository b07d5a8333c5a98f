package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/valleteclab/portaldcp-sub004/internal/engine"
)

// TokenService validates the room tokens that carry a participant's
// identity into the dispute room. Token issuance belongs to the platform's
// auth module; IssueRoomToken exists so that module (and tests) can mint
// tokens with the same claims layout.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

type RoomClaims struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

func (s *TokenService) IssueRoomToken(participantID, displayName, role string) (string, error) {
	if role != engine.RoleAuctioneer && role != engine.RoleSupplier {
		return "", errors.New("invalid role")
	}
	claims := RoomClaims{
		DisplayName: displayName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   participantID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) ValidateToken(tokenString string) (*engine.ParticipantInfo, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RoomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*RoomClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return &engine.ParticipantInfo{
		ID:          claims.Subject,
		Role:        claims.Role,
		DisplayName: claims.DisplayName,
	}, nil
}
