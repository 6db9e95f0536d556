package services

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind classifies failures from external collaborators. The
// orchestrator's hard/soft decision and the HTTP status mapping both
// key off this.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindTimeout   ErrorKind = "timeout"
	KindNetwork   ErrorKind = "network"
	KindUnknown   ErrorKind = "unknown"
)

// ExternalError wraps a collaborator failure with its classification.
type ExternalError struct {
	Service string
	Kind    ErrorKind
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Service, e.Kind, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// Classify wraps err as an ExternalError, inspecting known error
// shapes to assign a kind. A nil err returns nil.
func Classify(service string, err error) error {
	if err == nil {
		return nil
	}

	var ext *ExternalError
	if errors.As(err, &ext) {
		return err
	}

	kind := KindUnknown

	var apiErr *openai.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			kind = KindAuth
		case 429:
			kind = KindRateLimit
		case 408, 504:
			kind = KindTimeout
		}
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			kind = KindTimeout
		} else {
			kind = KindNetwork
		}
	}

	return &ExternalError{Service: service, Kind: kind, Err: err}
}

// KindOf extracts the classification from an error chain, or
// KindUnknown when the error is not an ExternalError.
func KindOf(err error) ErrorKind {
	var ext *ExternalError
	if errors.As(err, &ext) {
		return ext.Kind
	}
	return KindUnknown
}
