package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret la API no arranca sin JWT_SECRET.
var ErrEmptySecret = errors.New("jwt: secret vacío")

// Subject identidad que viaja en el token de operación.
type Subject struct {
	UserID    string
	CompanyID string
	Role      string // "admin" | "manager" | "sales" | "staff"
}

// Claims incluye los claims estándar JWT más el Subject del ERP.
// Role permite al middleware RBAC decidir sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Identity devuelve el Subject contenido en los claims.
func (c *Claims) Identity() Subject {
	return Subject{UserID: c.UserID, CompanyID: c.CompanyID, Role: c.Role}
}

// Signer emite y valida tokens HS256 con un issuer fijo.
// Los tokens sin exp o de otro issuer se rechazan.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewSigner construye el firmador. issuer vacío desactiva la validación de issuer.
func NewSigner(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock fija el reloj usado para iat/exp y para validar; útil en tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

// Issue firma un token para sub con vigencia ttl.
func (s *Signer) Issue(sub Subject, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("jwt: vigencia inválida %s", ttl)
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    sub.UserID,
		CompanyID: sub.CompanyID,
		Role:      sub.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse valida firma, método, expiración e issuer y devuelve los claims.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("jwt: claims inválidos")
	}
	return claims, nil
}
