package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix is the prefix for API tokens (secret keys)
	TokenPrefix = "bk_sk_" // #nosec G101 //nolint:gosec // Not a credential, just a prefix pattern

	// TokenPrefixLength is the number of characters shown when a token is masked
	TokenPrefixLength = 8

	// TokenLength is the length of the random part of tokens (in bytes, will be hex encoded)
	TokenLength = 32

	// bcryptCost is the cost factor for bcrypt hashing
	bcryptCost = 12
)

// GenerateToken generates a new API token
// Format: bk_sk_<64 hex chars>
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(bytes), nil
}

// HashToken creates a bcrypt hash of a token's secret part
func HashToken(token string) (string, error) {
	secret := strings.TrimPrefix(token, TokenPrefix)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken checks if a token matches a hash
func VerifyToken(token, hash string) bool {
	secret := strings.TrimPrefix(token, TokenPrefix)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// IsValidTokenFormat checks if a token has the correct format
func IsValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	secret := strings.TrimPrefix(token, TokenPrefix)
	if len(secret) != TokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(secret)
	return err == nil
}

// MaskToken returns a masked version of a token for display
// Example: bk_sk_a1b2c3d4****...****
func MaskToken(token string) string {
	if len(token) < len(TokenPrefix)+TokenPrefixLength {
		return "****"
	}
	return token[:len(TokenPrefix)+TokenPrefixLength] + "****...****"
}
