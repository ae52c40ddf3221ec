package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/MarcGrol/useradminclient/apiclient/authevents"
	"github.com/MarcGrol/useradminclient/lib/myerrors"
	"github.com/MarcGrol/useradminclient/lib/myevents"
	"github.com/MarcGrol/useradminclient/lib/mylog"
)

type tokenRefreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
}

type tokenRefreshResponse struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (cl *Client) refreshAndRetry(c context.Context, req request) ([]byte, error) {
	retried := req.markRetried()

	refreshToken, exists, err := cl.vault.Get(c, cl.config.RefreshTokenKey)
	if err != nil {
		return nil, cl.endSession(c, fmt.Errorf("error reading refresh token: %s", err))
	}
	if !exists {
		return nil, cl.endSession(c, fmt.Errorf("no refresh token available"))
	}

	resp, err := cl.refreshAccessToken(c, refreshToken)
	if err != nil {
		cl.publish(c, authevents.TokenRefreshFailed{
			ClientID: cl.config.ClientID,
			Reason:   err.Error(),
		})
		return nil, cl.endSession(c, fmt.Errorf("error refreshing access token: %s", err))
	}

	err = cl.vault.Put(c, cl.config.AccessTokenKey, resp.AccessToken)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error storing access token: %s", err))
	}
	if resp.RefreshToken != "" {
		err = cl.vault.Put(c, cl.config.RefreshTokenKey, resp.RefreshToken)
		if err != nil {
			return nil, myerrors.NewInternalError(fmt.Errorf("error storing refresh token: %s", err))
		}
	}

	cl.publish(c, authevents.TokenRefreshCompleted{
		ClientID: cl.config.ClientID,
	})

	// the retried request picks up the fresh token from the vault
	return cl.execute(c, retried)
}

func (cl *Client) refreshAccessToken(c context.Context, refreshToken string) (tokenRefreshResponse, error) {
	requestBody, err := json.Marshal(tokenRefreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
		ClientID:     cl.config.ClientID,
	})
	if err != nil {
		return tokenRefreshResponse{}, fmt.Errorf("error marshalling token request: %s", err)
	}

	httpReq, err := http.NewRequestWithContext(c, http.MethodPost, cl.config.AuthBaseURL+tokenEndpointPath, bytes.NewReader(requestBody))
	if err != nil {
		return tokenRefreshResponse{}, fmt.Errorf("error creating token request: %s", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderCorrelationID, cl.uuider.Create())

	httpResp, err := cl.httpClient.Do(httpReq)
	if err != nil {
		return tokenRefreshResponse{}, fmt.Errorf("error calling token endpoint: %s", err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return tokenRefreshResponse{}, fmt.Errorf("error reading token response: %s", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return tokenRefreshResponse{}, fmt.Errorf("token endpoint returned %d", httpResp.StatusCode)
	}

	resp := tokenRefreshResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return tokenRefreshResponse{}, fmt.Errorf("error parsing token response: %s", err)
	}
	if resp.AccessToken == "" {
		return tokenRefreshResponse{}, fmt.Errorf("token response lacks access_token")
	}

	return resp, nil
}

// endSession is the unrecoverable-auth path: both token slots are cleared and
// the browsing context is sent to the login page.
func (cl *Client) endSession(c context.Context, cause error) error {
	cl.logger.Log(c, "", mylog.SeverityWarn, "Ending session: %s", cause)

	err := cl.vault.Remove(c, cl.config.AccessTokenKey)
	if err != nil {
		cl.logger.Log(c, "", mylog.SeverityError, "Error removing access token: %s", err)
	}
	err = cl.vault.Remove(c, cl.config.RefreshTokenKey)
	if err != nil {
		cl.logger.Log(c, "", mylog.SeverityError, "Error removing refresh token: %s", err)
	}

	cl.publish(c, authevents.SessionExpired{
		ClientID: cl.config.ClientID,
	})

	cl.redirector.RedirectToLogin(c)

	return myerrors.NewUnauthorizedError(cause)
}

// publish is best-effort: audit must never fail a request
func (cl *Client) publish(c context.Context, event myevents.Event) {
	if cl.publisher == nil {
		return
	}

	err := cl.publisher.Publish(c, authevents.TopicName, event)
	if err != nil {
		cl.logger.Log(c, "", mylog.SeverityWarn, "Error publishing %s: %s", event.GetEventTypeName(), err)
	}
}
