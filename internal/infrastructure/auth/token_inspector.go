package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/you/dairyshell/domain"
)

// Token formats reported by the inspector
const (
	FormatJWT    = "jwt"
	FormatOpaque = "opaque"
	FormatNone   = "none"
)

// subjectClaims are tried in order when the token has no "sub"
var subjectClaims = []string{"_id", "id", "userId", "user_id"}

// TokenInspectorImpl implements domain.TokenInspector.
// Tokens are decoded for display only; the signature is never checked.
type TokenInspectorImpl struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewTokenInspector creates a new token inspector
func NewTokenInspector() domain.TokenInspector {
	return &TokenInspectorImpl{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// Inspect implements domain.TokenInspector
func (i *TokenInspectorImpl) Inspect(token string) domain.TokenInfo {
	if token == "" {
		return domain.TokenInfo{Format: FormatNone}
	}
	if strings.Count(token, ".") != 2 {
		return domain.TokenInfo{Format: FormatOpaque}
	}

	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return domain.TokenInfo{Format: FormatOpaque}
	}

	info := domain.TokenInfo{Format: FormatJWT, Subject: subject(claims)}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time.UTC()
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		info.ExpiresAt = &t
		info.Expired = !i.now().Before(t)
	}
	return info
}

func subject(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	for _, name := range subjectClaims {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
