package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gtodo/internal/service"
)

// Kind classifies a structured rejection.
type Kind int

const (
	// KindOther is any rejection not covered below.
	KindOther Kind = iota
	// KindAuthentication means the credential is missing, invalid or expired.
	KindAuthentication
	// KindNotFound means the operation referenced an unknown identifier.
	KindNotFound
	// KindValidation means the remote side refused the input.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	default:
		return "other"
	}
}

// RejectedError is a structured application error returned by the API.
type RejectedError struct {
	Op      string
	Kind    Kind
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Unwrap maps the rejection onto the service error taxonomy.
func (e *RejectedError) Unwrap() error {
	switch e.Kind {
	case KindAuthentication:
		return service.ErrAuthentication
	case KindNotFound:
		return service.ErrNotFound
	case KindValidation:
		return service.ErrValidation
	default:
		return service.ErrRejected
	}
}

// TransportError means no structured response reached the client.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{service.ErrTransport, e.Err}
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func rejected(op string, status int, errs []gqlError) error {
	first := errs[0]
	kind := classify(first)
	if kind == KindOther && status == http.StatusUnauthorized {
		kind = KindAuthentication
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if m := strings.TrimSpace(e.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	msg := strings.Join(msgs, "; ")
	if msg == "" {
		msg = kind.String() + " error"
	}
	return &RejectedError{Op: op, Kind: kind, Code: first.Extensions.Code, Message: msg}
}

func classify(e gqlError) Kind {
	switch strings.ToUpper(e.Extensions.Code) {
	case "UNAUTHENTICATED", "UNAUTHORIZED", "FORBIDDEN":
		return KindAuthentication
	case "NOT_FOUND":
		return KindNotFound
	case "BAD_USER_INPUT":
		return KindValidation
	}

	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "not authenticated"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "invalid token"),
		strings.Contains(msg, "jwt"):
		return KindAuthentication
	case strings.Contains(msg, "not found"):
		return KindNotFound
	}
	return KindOther
}
