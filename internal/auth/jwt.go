package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lalith-99/geoscope/internal/models"
)

// Token issuer/audience. Verification rejects tokens that carry
// anything else, so a token minted by an unrelated service sharing
// the same secret by accident still fails here.
const (
	TokenIssuer   = "geo-platform"
	TokenAudience = "geo-platform-users"
)

// Claims is the payload inside every bearer token: who the principal
// is plus the standard registered fields. The middleware reads these
// back on every request, so no server-side session store is needed.
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed HS256 token for a user. HMAC with a
// single shared secret is enough here: one service both issues and
// verifies. Asymmetric signing only pays off once other services need
// to verify without being able to issue.
func GenerateToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	return signClaims(user.ID, user.Email, user.Role, secret, ttl)
}

// ParseToken validates a token string and extracts the claims. It
// fails when the signature doesn't verify, the token is expired, the
// signing method isn't HMAC, or the issuer/audience don't match. This
// is the single gate for forged and stale tokens.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Checked before signature verification: a token signed
			// with "none" or RSA is rejected outright, closing the
			// classic algorithm-confusion hole.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// RefreshToken re-issues a token with a fresh expiry from the claims
// of a currently valid one. It is NOT a verification bypass: if the
// input fails ParseToken (expired, tampered, wrong issuer), refresh
// fails too.
func RefreshToken(tokenString, secret string, ttl time.Duration) (string, error) {
	claims, err := ParseToken(tokenString, secret)
	if err != nil {
		return "", fmt.Errorf("cannot refresh invalid token: %w", err)
	}
	return signClaims(claims.UserID, claims.Email, claims.Role, secret, ttl)
}

func signClaims(userID uuid.UUID, email string, role models.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
