package models

// RefreshToken is a persisted, single-use refresh token. Access tokens are
// stateless JWTs and are not stored; refresh tokens are rotated on every use.
type RefreshToken struct {
	Token     string `dynamodbav:"token" json:"token"`
	UID       string `dynamodbav:"uid" json:"-"`
	ExpiresAt int64  `dynamodbav:"expiresAt" json:"expiresAt"` // unix seconds
}

// TokensTable is the DynamoDB table name for refresh tokens, keyed by `token`.
const TokensTable = "Tokens"
