// client/errors.go
package client

import (
	"errors"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrUnauthenticated matches any call the API rejected with the
	// UNAUTHENTICATED code. The session has already been torn down when a
	// caller sees it.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNetwork matches transport failures (no usable GraphQL response).
	ErrNetwork = errors.New("network error")
)

// Error codes carried in GraphQL error extensions.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeValidationFailed = "GRAPHQL_VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
)

// Error is returned for every failed operation. Message is what the server
// said, joined when there were several errors.
type Error struct {
	Op      string
	Code    codes.Code
	Message string
	GraphQL gqlerror.List
	causes  []error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	return e.causes
}

// GRPCStatus lets status.FromError and status.Code classify the error.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}

// Code returns the classification of err, or codes.OK for nil.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return status.Code(err)
}

func extensionCode(e *gqlerror.Error) string {
	if e == nil || e.Extensions == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}

// codeFor maps a GraphQL extension code onto a gRPC code.
func codeFor(ext string) codes.Code {
	switch ext {
	case CodeUnauthenticated:
		return codes.Unauthenticated
	case CodeForbidden:
		return codes.PermissionDenied
	case CodeBadUserInput, CodeValidationFailed:
		return codes.InvalidArgument
	case CodeNotFound:
		return codes.NotFound
	default:
		return codes.Unknown
	}
}

// hasUnauthenticated reports whether any error carries UNAUTHENTICATED.
func hasUnauthenticated(errs gqlerror.List) bool {
	for _, e := range errs {
		if extensionCode(e) == CodeUnauthenticated {
			return true
		}
	}
	return false
}

// newGraphQLError classifies a non-empty error list. UNAUTHENTICATED wins
// over any other code in the list.
func newGraphQLError(op string, errs gqlerror.List) *Error {
	msgs := make([]string, 0, len(errs))
	code := codes.Unknown
	for _, e := range errs {
		msgs = append(msgs, e.Message)
		if c := codeFor(extensionCode(e)); code == codes.Unknown {
			code = c
		}
	}
	out := &Error{
		Op:      op,
		Code:    code,
		Message: strings.Join(msgs, "; "),
		GraphQL: errs,
	}
	if hasUnauthenticated(errs) {
		out.Code = codes.Unauthenticated
		out.causes = []error{ErrUnauthenticated}
	}
	return out
}

func newNetworkError(op string, cause error) *Error {
	return &Error{
		Op:      op,
		Code:    codes.Unavailable,
		Message: cause.Error(),
		causes:  []error{ErrNetwork, cause},
	}
}
