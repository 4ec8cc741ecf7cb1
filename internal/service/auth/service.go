// Package auth implements the credential store: customer registration,
// password verification, and session token issuance.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkazemy/subman/internal/apperr"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/repository"
	"github.com/nkazemy/subman/internal/util"
)

// Claims carried in access tokens. Subject is the customer id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	customers  repository.CustomersRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func New(customers repository.CustomersRepository, secret string, tokenTTL time.Duration, bcryptCost int) *Service {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		customers:  customers,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a customer with a bcrypt-hashed credential and returns
// the new id. Email must be unique.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	existing, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return "", apperr.Store("customer lookup", err)
	}
	if existing != nil {
		return "", apperr.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", apperr.Store("hash password", err)
	}

	c := model.Customer{
		ID:           util.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.customers.Insert(ctx, c); err != nil {
		return "", apperr.Store("insert customer", err)
	}
	return c.ID, nil
}

// Login verifies the credential and issues a signed HS256 token. The
// failure reason is never disclosed to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return "", apperr.Store("customer lookup", err)
	}
	if c == nil {
		return "", apperr.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return "", apperr.ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		Email: c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Store("sign token", err)
	}
	return signed, nil
}

// ParseToken validates signature and expiry and returns the claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// CustomerByID resolves a customer id; malformed ids yield (nil, nil).
func (s *Service) CustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	if !util.ValidID(id) {
		return nil, nil
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("customer lookup", err)
	}
	return c, nil
}
