package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
)

// Claims are the JWT claims describing an actor.
type Claims struct {
	TenantID    string   `json:"tenant_id"`
	UserID      string   `json:"user_id"`
	EmployeeID  string   `json:"employee_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Role        string   `json:"role"`
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// jwtTokenService implements TokenService with HMAC-SHA256 signed JWTs.
type jwtTokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must not be empty.
func NewTokenService(secret, issuer string) (TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if issuer == "" {
		issuer = "exitflow"
	}
	return &jwtTokenService{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue signs a token for actor.
func (s *jwtTokenService) Issue(actor *authDomain.Actor, ttl time.Duration) (string, error) {
	if actor == nil || actor.TenantID == "" || actor.UserID == uuid.Nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "tenant_id and user_id required")
	}
	if !actor.Role.Valid() {
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown role %q", actor.Role)
	}

	now := s.now()
	claims := Claims{
		TenantID:   actor.TenantID,
		UserID:     actor.UserID.String(),
		Name:       actor.Name,
		Role:       string(actor.Role),
		Department: actor.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.issuer,
		},
	}
	if actor.EmployeeID != nil {
		claims.EmployeeID = actor.EmployeeID.String()
	}
	for _, p := range actor.Grants {
		claims.Permissions = append(claims.Permissions, string(p))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses token and rebuilds the actor.
func (s *jwtTokenService) Verify(tokenString string) (*authDomain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "malformed user_id")
	}
	if claims.TenantID == "" {
		return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "missing tenant_id")
	}

	actor := &authDomain.Actor{
		UserID:     userID,
		TenantID:   claims.TenantID,
		Name:       claims.Name,
		Role:       authDomain.Role(claims.Role),
		Department: claims.Department,
	}
	if claims.EmployeeID != "" {
		employeeID, err := uuid.Parse(claims.EmployeeID)
		if err != nil {
			return nil, apperrors.Wrap(authDomain.ErrInvalidToken, "malformed employee_id")
		}
		actor.EmployeeID = &employeeID
	}
	for _, p := range claims.Permissions {
		actor.Grants = append(actor.Grants, authDomain.Permission(p))
	}

	return actor, nil
}
