// Package auth issues and verifies session tokens and enforces the campus
// credential policy.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// defaultKid is used when the manager is built from a single secret.
const defaultKid = "default"

// JWTManager signs and validates JWT tokens used by the API.
type JWTManager struct {
	keys      map[string][]byte // kid -> HMAC secret
	activeKid string            // kid used for new tokens
	duration  time.Duration     // how long tokens are valid
}

// Claims is the custom JWT payload (user id + email). RegisteredClaims.ID
// carries a unique token id so a single session can be revoked.
type Claims struct {
	UserID string `json:"user_id"` // hex ObjectID
	Email  string `json:"email"`   // normalized
	jwt.RegisteredClaims
}

// NewJWTManager returns a JWTManager backed by one secret.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return NewJWTManagerFromKeys(map[string]string{defaultKid: secretKey}, defaultKid, duration)
}

// NewJWTManagerFromKeys returns a JWTManager that signs with activeKid and
// verifies with any key in keys. Older keys stay in the map until every
// token they signed has expired.
func NewJWTManagerFromKeys(keys map[string]string, activeKid string, duration time.Duration) *JWTManager {
	m := &JWTManager{keys: make(map[string][]byte, len(keys)), activeKid: activeKid, duration: duration}
	for kid, secret := range keys {
		m.keys[kid] = []byte(secret)
	}
	return m
}

// Duration reports the configured token lifetime.
func (m *JWTManager) Duration() time.Duration { return m.duration }

// GenerateToken issues a signed JWT token for a user.
func (m *JWTManager) GenerateToken(userID bson.ObjectID, email string) (string, time.Time, error) {
	secret, ok := m.keys[m.activeKid]
	if !ok {
		return "", time.Time{}, fmt.Errorf("active key %q not configured", m.activeKid)
	}

	now := time.Now()
	expiresAt := now.Add(m.duration)

	claims := &Claims{
		UserID: userID.Hex(),
		Email:  normalize.Email(email),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	// HS256 with the kid header so VerifyToken can pick the right key
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKid

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// only HMAC; rejects alg=none and asymmetric substitution
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			kid = m.activeKid
		}
		secret, ok := m.keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
