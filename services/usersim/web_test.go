package usersim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/useradminclient/apiclient"
	"github.com/MarcGrol/useradminclient/lib/mystore"
	"github.com/MarcGrol/useradminclient/lib/mytime"
	"github.com/MarcGrol/useradminclient/lib/myuuid"
	"github.com/MarcGrol/useradminclient/lib/myvault"
)

func setup(t *testing.T) *httptest.Server {
	c := context.TODO()

	userStore, userCleanup, err := mystore.NewInMemoryStore[User](c)
	assert.NoError(t, err)
	t.Cleanup(userCleanup)

	sessionStore, sessionCleanup, err := mystore.NewInMemoryStore[refreshSession](c)
	assert.NoError(t, err)
	t.Cleanup(sessionCleanup)

	webService := NewService(userStore, sessionStore, []byte("test-secret"),
		15*time.Minute, time.Hour, mytime.RealNower{}, myuuid.RealUUIDer{})

	router := mux.NewRouter()
	webService.RegisterEndpoints(c, router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts
}

func obtainTokens(t *testing.T, ts *httptest.Server, username string) tokenResponse {
	requestBody, err := json.Marshal(tokenRequest{
		GrantType: "password",
		ClientID:  "useradmin-frontend",
		Username:  username,
	})
	assert.NoError(t, err)

	httpResp, err := http.Post(ts.URL+"/oauth2/token", "application/json", bytes.NewReader(requestBody))
	assert.NoError(t, err)
	defer httpResp.Body.Close()
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)

	resp := tokenResponse{}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	return resp
}

func TestTokenEndpoint(t *testing.T) {
	ts := setup(t)

	t.Run("Password grant", func(t *testing.T) {
		tokens := obtainTokens(t, ts, "marc")
		assert.Equal(t, "bearer", tokens.TokenType)
		assert.Equal(t, int((15 * time.Minute).Seconds()), tokens.ExpiresIn)
	})

	t.Run("Form encoded grant", func(t *testing.T) {
		form := url.Values{
			"grant_type": {"password"},
			"client_id":  {"useradmin-frontend"},
			"username":   {"marc"},
		}
		httpResp, err := http.Post(ts.URL+"/oauth2/token", "application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()))
		assert.NoError(t, err)
		defer httpResp.Body.Close()
		assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	})

	t.Run("Refresh grant rotates", func(t *testing.T) {
		tokens := obtainTokens(t, ts, "marc")

		requestBody, err := json.Marshal(tokenRequest{
			GrantType:    "refresh_token",
			RefreshToken: tokens.RefreshToken,
		})
		assert.NoError(t, err)

		httpResp, err := http.Post(ts.URL+"/oauth2/token", "application/json", bytes.NewReader(requestBody))
		assert.NoError(t, err)
		defer httpResp.Body.Close()
		assert.Equal(t, http.StatusOK, httpResp.StatusCode)

		refreshed := tokenResponse{}
		err = json.NewDecoder(httpResp.Body).Decode(&refreshed)
		assert.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

		// the spent refresh token no longer works
		httpResp2, err := http.Post(ts.URL+"/oauth2/token", "application/json", bytes.NewReader(requestBody))
		assert.NoError(t, err)
		defer httpResp2.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, httpResp2.StatusCode)
	})

	t.Run("Unsupported grant", func(t *testing.T) {
		requestBody, err := json.Marshal(tokenRequest{GrantType: "client_credentials"})
		assert.NoError(t, err)

		httpResp, err := http.Post(ts.URL+"/oauth2/token", "application/json", bytes.NewReader(requestBody))
		assert.NoError(t, err)
		defer httpResp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
	})
}

func TestEndpointsRequireBearerToken(t *testing.T) {
	ts := setup(t)

	httpResp, err := http.Get(ts.URL + "/users")
	assert.NoError(t, err)
	defer httpResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, httpResp.StatusCode)
}

func TestUserLifecycle(t *testing.T) {
	c := context.TODO()
	ts := setup(t)
	tokens := obtainTokens(t, ts, "admin")

	client := apiclient.New(apiclient.Config{
		BaseURL:     ts.URL,
		AuthBaseURL: ts.URL,
		ClientID:    "useradmin-frontend",
	}, newVault(t), myuuid.RealUUIDer{}, nil, nil)
	assert.NoError(t, client.SetAuthToken(c, tokens.AccessToken))
	assert.NoError(t, client.SetRefreshToken(c, tokens.RefreshToken))

	created, err := apiclient.Post[User](c, client, "/users", User{
		FullName:     "Marc Grol",
		EmailAddress: "marc@example.com",
		Role:         "admin",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.UID)
	assert.Equal(t, StatusPending, created.Status)

	approved, err := apiclient.Post[User](c, client, fmt.Sprintf("/users/%s/approve", created.UID), nil)
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	fetched, err := apiclient.Get[User](c, client, "/users/"+created.UID)
	assert.NoError(t, err)
	assert.Equal(t, "Marc Grol", fetched.FullName)

	listed, err := apiclient.Get[[]User](c, client, "/users?role=admin&search=grol")
	assert.NoError(t, err)
	assert.Len(t, listed, 1)

	unmatched, err := apiclient.Get[[]User](c, client, "/users?role=viewer")
	assert.NoError(t, err)
	assert.Len(t, unmatched, 0)

	patched, err := apiclient.Patch[User](c, client, "/users/"+created.UID, map[string]string{
		"fullName": "Marc G.",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Marc G.", patched.FullName)
	assert.Equal(t, "marc@example.com", patched.EmailAddress)

	_, err = apiclient.Delete[struct{}](c, client, "/users/"+created.UID)
	assert.NoError(t, err)

	_, err = apiclient.Get[User](c, client, "/users/"+created.UID)
	assert.Error(t, err)
}

// The client holds a broken access token but a valid refresh token: the first
// call 401s, the client refreshes against the simulator and the caller never
// notices.
func TestClientRecoversAgainstSimulator(t *testing.T) {
	c := context.TODO()
	ts := setup(t)
	tokens := obtainTokens(t, ts, "admin")

	client := apiclient.New(apiclient.Config{
		BaseURL:     ts.URL,
		AuthBaseURL: ts.URL,
		ClientID:    "useradmin-frontend",
	}, newVault(t), myuuid.RealUUIDer{}, nil, nil)
	assert.NoError(t, client.SetAuthToken(c, "no-longer-valid"))
	assert.NoError(t, client.SetRefreshToken(c, tokens.RefreshToken))

	users, err := apiclient.Get[[]User](c, client, "/users")
	assert.NoError(t, err)
	assert.Len(t, users, 0)
}

func newVault(t *testing.T) myvault.TokenVault {
	vault, cleanup, err := myvault.New(context.TODO())
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	return vault
}
