package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is a context key for the trace context (used by mylog)
type CtxTraceContext struct{}

// CtxCorrelationID is a context key for the correlation-id of the request being handled
type CtxCorrelationID struct{}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	var trace string

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	traceContext := r.Header.Get("X-Cloud-Trace-Context")
	traceParts := strings.Split(traceContext, "/")

	if len(traceParts) > 0 && len(traceParts[0]) > 0 {
		trace = fmt.Sprintf("projects/%s/traces/%s", projectID, traceParts[0])
	}

	ctx := context.WithValue(context.Background(), CtxTraceContext{}, trace)
	ctx = context.WithValue(ctx, CtxCorrelationID{}, r.Header.Get("X-Correlation-ID"))

	return ctx
}

func CorrelationID(c context.Context) string {
	correlationID, ok := c.Value(CtxCorrelationID{}).(string)
	if !ok {
		return ""
	}

	return correlationID
}
