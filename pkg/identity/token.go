package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cuemby/herald/pkg/types"
)

// Claims is the JWT payload carrying a recipient identity
type Claims struct {
	jwt.RegisteredClaims
	RecipientID string `json:"recipient_id"`
	Role        string `json:"role,omitempty"`
}

// GenerateToken mints an HS256 token for a recipient
func GenerateToken(secret, recipientID, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "herald",
		},
		RecipientID: recipientID,
		Role:        role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a token and extracts the recipient it carries.
// A token without a role claim yields the regular user role.
func ParseToken(secret, tokenString string) (types.Recipient, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return types.Recipient{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.RecipientID == "" {
		return types.Recipient{}, fmt.Errorf("token carries no recipient identity")
	}

	role := claims.Role
	if role == "" {
		role = types.DefaultRole
	}
	return types.Recipient{ID: claims.RecipientID, Role: role}, nil
}

// SessionFromToken validates a token and returns a session that ends
// itself when the token expires
func SessionFromToken(secret, tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.RecipientID == "" {
		return nil, fmt.Errorf("token carries no recipient identity")
	}

	session := NewSession(types.Recipient{ID: claims.RecipientID, Role: claims.Role})
	if claims.ExpiresAt != nil {
		time.AfterFunc(time.Until(claims.ExpiresAt.Time), session.End)
	}
	return session, nil
}
