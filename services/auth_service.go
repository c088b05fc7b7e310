package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"datee_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenLifetime  = 24 * time.Hour
	refreshTokenLifetime = 30 * 24 * time.Hour
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrBadToken       = errors.New("invalid or expired token")
)

// TokenPair is what a successful token grant returns.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

type accessClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// AuthService issues and validates tokens. Access tokens are stateless HS256
// JWTs; refresh tokens are opaque, stored in the Tokens table and rotated on
// every use.
type AuthService struct {
	Dynamo *DynamoService
	Users  *UserService
	Secret string
}

// Login verifies email+password and issues a fresh token pair.
func (as *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := as.Users.VerifyLogin(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrBadCredentials
	}
	return as.issuePair(ctx, user.UID)
}

// Refresh rotates a refresh token: the old token is revoked and a new pair
// is issued. An unknown or expired token yields ErrBadToken.
func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	key := map[string]types.AttributeValue{
		"token": &types.AttributeValueMemberS{Value: refreshToken},
	}
	var stored models.RefreshToken
	err := as.Dynamo.GetItem(ctx, models.TokensTable, key, &stored)
	if errors.Is(err, ErrItemNotFound) {
		return nil, ErrBadToken
	}
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > stored.ExpiresAt {
		// Expired; clean it up on the way out.
		_ = as.Dynamo.DeleteItem(ctx, models.TokensTable, key)
		return nil, ErrBadToken
	}
	if err := as.Dynamo.DeleteItem(ctx, models.TokensTable, key); err != nil {
		return nil, err
	}
	return as.issuePair(ctx, stored.UID)
}

func (as *AuthService) issuePair(ctx context.Context, uid string) (*TokenPair, error) {
	access, err := as.GenerateAccessToken(uid)
	if err != nil {
		return nil, err
	}
	refresh := models.RefreshToken{
		Token:     uuid.NewString(),
		UID:       uid,
		ExpiresAt: time.Now().Add(refreshTokenLifetime).Unix(),
	}
	if err := as.Dynamo.PutItem(ctx, models.TokensTable, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(accessTokenLifetime.Seconds()),
	}, nil
}

// GenerateAccessToken signs a 24h HS256 access token for the user.
func (as *AuthService) GenerateAccessToken(uid string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UID: uid,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses an access token and returns the uid it carries.
func (as *AuthService) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.Secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.UID == "" {
		return "", ErrBadToken
	}
	return claims.UID, nil
}
