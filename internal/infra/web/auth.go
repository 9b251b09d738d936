// File: internal/infra/web/auth.go
package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

// AuthManager mints and verifies short-lived admin session tokens.
// Tokens are accepted from either a Bearer header or the session cookie.
type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, secure bool, ttl time.Duration) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret:   []byte(secret),
		CookieName:   "admin_session",
		SecureCookie: secure,
		TTL:          ttl,
	}}
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   "admin",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(a.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return signed, nil
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*AdminClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
