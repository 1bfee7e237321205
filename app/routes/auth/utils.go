package auth

import (
	"crypto/rand"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsStaff bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

func getJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "iete-membership-secret-key" // Default for development
	}
	return []byte(secret)
}

func GenerateJWT(userID, email, name, role string, isStaff bool) (string, error) {
	claims := JWTClaims{
		UserID:  userID,
		Email:   email,
		Name:    name,
		Role:    role,
		IsStaff: isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "iete-membership",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTSecret())
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return getJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrInvalidKey
}

// GenerateResetToken issues a short-lived token bound to password reset.
func GenerateResetToken(userID, email string) (string, error) {
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "iete-membership",
			Subject:   "password-reset",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTSecret())
}

func ValidateResetToken(tokenString string) (*JWTClaims, error) {
	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "password-reset" {
		return nil, jwt.ErrInvalidKey
	}
	return claims, nil
}

// otpTTL is how long a verification code stays valid.
const otpTTL = 10 * time.Minute

type otpEntry struct {
	code    string
	expires time.Time
}

// otpCache holds issued verification codes keyed by email. Entries are
// single use and lazily evicted on lookup.
type otpCache struct {
	mu      sync.Mutex
	entries map[string]otpEntry
}

var otps = &otpCache{entries: make(map[string]otpEntry)}

func (c *otpCache) put(email, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[email] = otpEntry{code: code, expires: time.Now().Add(otpTTL)}
}

func (c *otpCache) verify(email, code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[email]
	if !ok || time.Now().After(entry.expires) || entry.code != code {
		return false
	}
	delete(c.entries, email)
	return true
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// GenerateOTP returns a 6-digit verification code.
func GenerateOTP() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	n := (uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
