package apiclient

import (
	"context"
	"time"

	"github.com/MarcGrol/useradminclient/lib/mylog"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderUserID        = "user-id"

	// LoginPath is where the browsing context is sent when the session can not be recovered
	LoginPath = "/login"

	tokenEndpointPath = "/oauth2/token"

	defaultAccessTokenKey  = "accessToken"
	defaultRefreshTokenKey = "refreshToken"
	defaultTimeout         = 5 * time.Second
)

type Config struct {
	BaseURL         string
	AuthBaseURL     string
	ClientID        string
	AccessTokenKey  string
	RefreshTokenKey string
	Timeout         time.Duration
}

//go:generate mockgen -source=api.go -package apiclient -destination redirector_mock.go LoginRedirector
type LoginRedirector interface {
	// RedirectToLogin sends the browsing context that owns this client to the login page
	RedirectToLogin(c context.Context)
}

type loggingRedirector struct {
	logger mylog.Logger
}

// NewLoggingRedirector is the headless default: it only reports that the
// session ended. Front-ends bind their own navigation instead.
func NewLoggingRedirector() LoginRedirector {
	return &loggingRedirector{
		logger: mylog.New("apiclient"),
	}
}

func (r loggingRedirector) RedirectToLogin(c context.Context) {
	r.logger.Log(c, "", mylog.SeverityInfo, "Session ended, user must be sent to %s", LoginPath)
}
