package services

import (
	"errors"
	"time"

	"walletv5/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const OPERATOR_TOKEN_TTL = 24 * time.Hour

type OperatorClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Authentication issues and checks operator tokens for the deploy endpoint.
type Authentication struct {
	secret []byte
	now    func() time.Time
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Authentication{[]byte(secret), time.Now}, nil
}

func (authentication *Authentication) CreateToken(operator *models.OperatorFromAuth) (string, error) {
	now := authentication.now()
	claims := &OperatorClaims{
		ID: operator.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(OPERATOR_TOKEN_TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(authentication.secret)
}

func (authentication *Authentication) Validate(token string) (*models.OperatorFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return authentication.secret, nil
	}
	jwtToken, err := jwt.ParseWithClaims(token, &OperatorClaims{}, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(authentication.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*OperatorClaims)
	if !ok || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}

	return &models.OperatorFromAuth{ID: claims.ID}, nil
}
