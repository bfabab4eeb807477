package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

// TokenSource yields a bearer credential for one outgoing request.
type TokenSource interface {
	Bearer(ctx context.Context) (string, error)
}

// HTTPDoer is the seam between the transport and the underlying HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// ResolveLogger applies deterministic precedence provider > logger > nop.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	return glog.Resolve(name, provider, logger)
}
