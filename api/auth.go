package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/interntrack/pkg/models"
)

const purposePasswordReset = "password_reset"

var errInvalidResetToken = errors.New("invalid or expired reset token")

// issueToken signs a session token for u.
func issueToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// passwordFingerprint ties a reset token to the hash it was issued against,
// so the token stops working once the password changes.
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func issueResetToken(secret string, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"purpose": purposePasswordReset,
		"fp":      passwordFingerprint(u.PasswordHash),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// parseResetToken returns the user id and fingerprint carried by a reset token.
func parseResetToken(secret, tokenString string) (userID, fingerprint string, err error) {
	claims, err := parseToken(tokenString, secret)
	if err != nil {
		return "", "", errInvalidResetToken
	}
	if p, _ := claims["purpose"].(string); p != purposePasswordReset {
		return "", "", errInvalidResetToken
	}
	userID, _ = claims["user_id"].(string)
	fingerprint, _ = claims["fp"].(string)
	if userID == "" || fingerprint == "" {
		return "", "", errInvalidResetToken
	}
	return userID, fingerprint, nil
}
