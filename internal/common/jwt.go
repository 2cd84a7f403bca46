package common

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
	TokenSession = "session"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims represents the data stored in a yatube token
type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what the token endpoint hands out.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL, sessionTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (ti *TokenIssuer) IssuePair(userID uint, username string) (TokenPair, error) {
	refresh, err := ti.generate(userID, username, TokenRefresh, ti.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := ti.generate(userID, username, TokenAccess, ti.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// Refresh trades a valid refresh token for a new access token.
func (ti *TokenIssuer) Refresh(refreshToken string) (string, error) {
	claims, err := ti.Validate(refreshToken, TokenRefresh)
	if err != nil {
		return "", err
	}
	return ti.generate(claims.UserID, claims.Username, TokenAccess, ti.accessTTL)
}

func (ti *TokenIssuer) IssueSession(userID uint, username string) (string, error) {
	return ti.generate(userID, username, TokenSession, ti.sessionTTL)
}

func (ti *TokenIssuer) SessionTTL() time.Duration {
	return ti.sessionTTL
}

func (ti *TokenIssuer) generate(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	now := ti.now()
	claims := &Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "yatube",
			Subject:   username,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(ti.secret)
}

// Validate parses the token and checks that it is of the expected type.
func (ti *TokenIssuer) Validate(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
