package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/MarcGrol/useradminclient/lib/mylog"
)

// request is the immutable description of one outbound call. The retried
// marker travels with it: once set it is never cleared, so a logical request
// gets at most one refresh-driven retry.
type request struct {
	method  string
	path    string
	body    []byte
	headers http.Header
	retried bool
}

func (r request) markRetried() request {
	r.retried = true
	return r
}

func (cl *Client) prepareRequest(c context.Context, req request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(c, req.method, cl.config.BaseURL+req.path, bytes.NewReader(req.body))
	if err != nil {
		return nil, fmt.Errorf("error creating http request for %s %s: %s", req.method, req.path, err)
	}

	for name, values := range req.headers {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	correlationID := cl.uuider.Create()
	httpReq.Header.Set(HeaderCorrelationID, correlationID)

	accessToken, exists, err := cl.vault.Get(c, cl.config.AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("error reading access token: %s", err)
	}
	if exists {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)

		userID, err := userIDFromToken(accessToken)
		if err != nil {
			// a malformed token never blocks the request, it only costs the user-id header
			cl.logger.Log(c, correlationID, mylog.SeverityWarn, "Could not derive user-id from access token: %s", err)
		} else if userID != "" {
			httpReq.Header.Set(HeaderUserID, userID)
		}
	}

	return httpReq, nil
}
