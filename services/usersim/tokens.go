package usersim

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MarcGrol/useradminclient/lib/myerrors"
)

type tokenRequest struct {
	GrantType    string `json:"grant_type" form:"grant_type"`
	ClientID     string `json:"client_id" form:"client_id"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	Username     string `json:"username" form:"username"`
}

type tokenResponse struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type simTokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *service) issueToken(c context.Context, req tokenRequest) (tokenResponse, error) {
	switch req.GrantType {
	case "password":
		return s.issueTokenForUser(c, "u-"+req.Username)
	case "refresh_token":
		return s.refreshToken(c, req.RefreshToken)
	default:
		return tokenResponse{}, myerrors.NewInvalidInputError(fmt.Errorf("grant_type '%s' not supported", req.GrantType))
	}
}

func (s *service) issueTokenForUser(c context.Context, userUID string) (tokenResponse, error) {
	now := s.nower.Now()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, simTokenClaims{
		UserID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}).SignedString(s.signingKey)
	if err != nil {
		return tokenResponse{}, myerrors.NewInternalError(fmt.Errorf("error signing access token: %s", err))
	}

	session := refreshSession{
		UID:       s.uuider.Create(),
		UserUID:   userUID,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	err = s.sessionStore.Put(c, session.UID, session)
	if err != nil {
		return tokenResponse{}, myerrors.NewInternalError(fmt.Errorf("error storing refresh session: %s", err))
	}

	return tokenResponse{
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		AccessToken:  accessToken,
		RefreshToken: session.UID,
	}, nil
}

// refreshToken rotates: the presented refresh token is spent, a new one comes
// back. The spend-then-reissue runs in a transaction so that two concurrent
// refreshes with the same token cannot both succeed.
func (s *service) refreshToken(c context.Context, refreshToken string) (tokenResponse, error) {
	resp := tokenResponse{}

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		session, exists, err := s.sessionStore.Get(c, refreshToken)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching refresh session: %s", err))
		}
		if !exists {
			return myerrors.NewUnauthorizedError(fmt.Errorf("refresh token not known"))
		}
		if session.ExpiresAt.Before(s.nower.Now()) {
			return myerrors.NewUnauthorizedError(fmt.Errorf("refresh token expired"))
		}

		err = s.sessionStore.Remove(c, session.UID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error removing refresh session: %s", err))
		}

		resp, err = s.issueTokenForUser(c, session.UserUID)

		return err
	})
	if err != nil {
		return tokenResponse{}, err
	}

	return resp, nil
}

func (s *service) validateAccessToken(tokenValue string) (string, error) {
	claims := simTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenValue, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", myerrors.NewUnauthorizedError(fmt.Errorf("invalid access token: %s", err))
	}

	return claims.UserID, nil
}
