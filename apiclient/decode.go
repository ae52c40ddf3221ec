package apiclient

import (
	"github.com/golang-jwt/jwt/v5"
)

type accessTokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// userIDFromToken extracts the user identifier claim without verifying the
// signature: the backend is the authority, the header exists for log
// correlation only.
func userIDFromToken(tokenValue string) (string, error) {
	claims := accessTokenClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenValue, &claims)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}
