package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthModule issues and validates JWTs for the bridge's single operator
// account.
type AuthModule struct {
	JWTSecret         string
	adminUser         string
	adminPasswordHash string
}

func NewAuthModule(jwtSecret, adminUser, adminPasswordHash string) *AuthModule {
	return &AuthModule{
		JWTSecret:         jwtSecret,
		adminUser:         adminUser,
		adminPasswordHash: adminPasswordHash,
	}
}

// LoginWithJWT checks the operator credentials and returns a signed token.
func (a *AuthModule) LoginWithJWT(username, password string) (string, error) {
	if username != a.adminUser {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.adminPasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	return a.generateJWT(username)
}

func (a *AuthModule) generateJWT(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

// ValidateTokenJWT validates an Authorization header value and returns the
// token's subject.
func (a *AuthModule) ValidateTokenJWT(header string) (string, error) {
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" {
		return "", errors.New("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid subject")
	}
	return sub, nil
}
