package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/MarcGrol/useradminclient/lib/myconfig"
	"github.com/MarcGrol/useradminclient/lib/myerrors"
	"github.com/MarcGrol/useradminclient/lib/mylog"
	"github.com/MarcGrol/useradminclient/lib/mypublisher"
	"github.com/MarcGrol/useradminclient/lib/myuuid"
	"github.com/MarcGrol/useradminclient/lib/myvault"
)

// Client issues HTTP requests against one base URL, transparently attaching
// bearer authorization and recovering once per request from an expired access
// token. Tokens are read fresh from the vault on every request.
//
// Concurrent requests that hit a 401 at the same time each run their own
// refresh; the vault write is last-writer-wins. Known limitation, accepted.
type Client struct {
	config     Config
	vault      myvault.TokenVault
	uuider     myuuid.UUIDer
	redirector LoginRedirector
	publisher  mypublisher.Publisher
	logger     mylog.Logger
	httpClient *http.Client
}

func New(config Config, vault myvault.TokenVault, uuider myuuid.UUIDer, redirector LoginRedirector, publisher mypublisher.Publisher) *Client {
	if config.AccessTokenKey == "" {
		config.AccessTokenKey = defaultAccessTokenKey
	}
	if config.RefreshTokenKey == "" {
		config.RefreshTokenKey = defaultRefreshTokenKey
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if redirector == nil {
		redirector = NewLoggingRedirector()
	}

	return &Client{
		config:     config,
		vault:      vault,
		uuider:     uuider,
		redirector: redirector,
		publisher:  publisher,
		logger:     mylog.New("apiclient"),
		// No cookie jar: authentication is bearer-token only
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// NewFromConfig wires the vault (Redis when configured, mystore otherwise)
// and the audit publisher from process-wide configuration.
func NewFromConfig(c context.Context, cfg *myconfig.Config, redirector LoginRedirector) (*Client, func(), error) {
	var vault myvault.TokenVault
	var vaultCleanup func()
	var err error

	if cfg.Vault.RedisAddr != "" {
		vault, vaultCleanup, err = myvault.NewRedisVault(cfg.Vault.RedisAddr, cfg.Vault.RedisPassword, cfg.Vault.RedisDB)
	} else {
		vault, vaultCleanup, err = myvault.New(c)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error creating token vault: %s", err)
	}

	publisher, publisherCleanup, err := mypublisher.New(c)
	if err != nil {
		vaultCleanup()
		return nil, nil, fmt.Errorf("error creating publisher: %s", err)
	}

	client := New(Config{
		BaseURL:         cfg.Client.BaseURL,
		AuthBaseURL:     cfg.Client.AuthBaseURL,
		ClientID:        cfg.Client.ClientID,
		AccessTokenKey:  cfg.Vault.AccessTokenKey,
		RefreshTokenKey: cfg.Vault.RefreshTokenKey,
		Timeout:         cfg.Client.Timeout,
	}, vault, myuuid.RealUUIDer{}, redirector, publisher)

	return client, func() {
		publisherCleanup()
		vaultCleanup()
	}, nil
}

// SetAuthToken persists the access token; subsequent requests use it until
// replaced or cleared.
func (cl *Client) SetAuthToken(c context.Context, token string) error {
	return cl.vault.Put(c, cl.config.AccessTokenKey, token)
}

// SetRefreshToken persists the refresh token used for transparent recovery.
func (cl *Client) SetRefreshToken(c context.Context, token string) error {
	return cl.vault.Put(c, cl.config.RefreshTokenKey, token)
}

// ClearAuthToken removes both tokens; subsequent requests go out unauthenticated.
func (cl *Client) ClearAuthToken(c context.Context) error {
	accessErr := cl.vault.Remove(c, cl.config.AccessTokenKey)
	refreshErr := cl.vault.Remove(c, cl.config.RefreshTokenKey)

	if accessErr != nil {
		return accessErr
	}

	return refreshErr
}

func (cl *Client) send(c context.Context, req request) (int, []byte, error) {
	httpReq, err := cl.prepareRequest(c, req)
	if err != nil {
		return 0, nil, myerrors.NewInternalError(err)
	}

	correlationID := httpReq.Header.Get(HeaderCorrelationID)
	cl.logger.Log(c, correlationID, mylog.SeverityDebug, "HTTP request: %s %s", req.method, req.path)

	httpResp, err := cl.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, myerrors.NewUnavailableError(fmt.Errorf("error calling %s %s: %s", req.method, req.path, err))
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, myerrors.NewInternalError(fmt.Errorf("error reading response of %s %s: %s", req.method, req.path, err))
	}

	cl.logger.Log(c, correlationID, mylog.SeverityDebug, "HTTP response: %s %s -> %d", req.method, req.path, httpResp.StatusCode)

	return httpResp.StatusCode, respPayload, nil
}

func (cl *Client) execute(c context.Context, req request) ([]byte, error) {
	status, respPayload, err := cl.send(c, req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !req.retried {
		return cl.refreshAndRetry(c, req)
	}

	// A 401 on an already-retried request ends up here: immediate rejection
	if status >= http.StatusBadRequest {
		return nil, myerrors.NewHTTPError(status, fmt.Errorf("%s %s failed: %s", req.method, req.path, errorMessage(respPayload, status)))
	}

	return respPayload, nil
}

func errorMessage(respPayload []byte, status int) string {
	resp := struct {
		Message string
	}{}
	if err := json.Unmarshal(respPayload, &resp); err == nil && resp.Message != "" {
		return resp.Message
	}

	return http.StatusText(status)
}
