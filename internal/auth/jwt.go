package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is the validity window of a bearer token.
const DefaultTokenExpiry = 24 * time.Hour

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller decoded from a bearer token.
type Identity struct {
	AccountID string
	Role      Role
}

type JWTManager struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSigningKey = errors.New("token signing key not configured")
)

func NewJWTManager(secret string, expiry time.Duration, issuer string) *JWTManager {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// Expiry reports how long issued tokens stay valid.
func (m *JWTManager) Expiry() time.Duration {
	return m.expiry
}

func (m *JWTManager) Generate(subject string, role Role) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSigningKey
	}
	if subject == "" || !role.Valid() {
		return "", ErrInvalidToken
	}

	now := m.now()
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}
	// Without a key every token is rejected.
	if len(m.secret) == 0 {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if !Role(claims.Role).Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate validates a token and returns the identity it carries.
func (m *JWTManager) Authenticate(tokenString string) (Identity, error) {
	claims, err := m.Validate(tokenString)
	if err != nil {
		return Identity{}, err
	}
	return Identity{AccountID: claims.Subject, Role: Role(claims.Role)}, nil
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
