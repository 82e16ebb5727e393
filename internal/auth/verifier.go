package auth

import (
	"net/http"
	"strings"
)

// Verifier checks presented tokens against a fixed set of bcrypt hashes
type Verifier struct {
	hashes []string
}

// NewVerifier copies hashes, skipping blank entries
func NewVerifier(hashes []string) *Verifier {
	v := &Verifier{}
	for _, h := range hashes {
		if h = strings.TrimSpace(h); h != "" {
			v.hashes = append(v.hashes, h)
		}
	}
	return v
}

// Len returns the number of usable hashes
func (v *Verifier) Len() int {
	return len(v.hashes)
}

// Verify returns nil when token matches one of the hashes. Every failure is
// categorized as errors.Unauthorized.
func (v *Verifier) Verify(token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if !IsValidTokenFormat(token) {
		return ErrMalformedToken
	}
	for _, h := range v.hashes {
		if VerifyToken(token, h) {
			return nil
		}
	}
	return ErrInvalidToken
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const scheme = "bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
