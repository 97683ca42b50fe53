package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID int64
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. Cart ownership
// is keyed entirely on the numeric user id carried here.
type AccessTokenClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}
