package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC.
const (
	RoleAdmin     = "admin"
	RoleContador  = "contador"
	RoleResidente = "residente"
)

// ErrEmptySecret se devuelve si no hay secreto configurado.
var ErrEmptySecret = errors.New("jwt: secret vacío")

// Claims incluye los claims estándar JWT más la empresa y el rol del usuario.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID int    `json:"company_id"`
	Role      string `json:"role"` // "admin" | "contador" | "residente"
}

// Generate genera un token HS256 con userID, companyID y role.
func Generate(secret, userID string, companyID int, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida el token y devuelve userID, companyID y role.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o no trae empresa.
func Parse(secret, tokenString string) (userID string, companyID int, role string, err error) {
	if secret == "" {
		return "", 0, "", ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", 0, "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", 0, "", fmt.Errorf("claims inválidos")
	}
	if claims.CompanyID <= 0 {
		return "", 0, "", fmt.Errorf("claims inválidos: empresa ausente")
	}
	return claims.UserID, claims.CompanyID, claims.Role, nil
}
