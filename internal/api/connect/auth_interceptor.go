package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	"github.com/osa030/albumbox/internal/api/remotev1/remotev1connect"
)

const (
	// ControlTokenHeader is the header name for the control token.
	ControlTokenHeader = "X-Control-Token"
)

var errBadControlToken = errors.New("missing or invalid control token")

// NewControlAuthInterceptor creates an interceptor that requires the control
// token on procedures that change playback. An empty token disables the check.
func NewControlAuthInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token == "" || !remotev1connect.MutatingProcedures[req.Spec().Procedure] {
				return next(ctx, req)
			}

			// Extract token from metadata
			got := req.Header().Get(ControlTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, errBadControlToken)
			}

			return next(ctx, req)
		}
	}
}

// NewControlTokenClientInterceptor attaches the control token to outgoing
// requests.
func NewControlTokenClientInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" && req.Spec().IsClient {
				req.Header().Set(ControlTokenHeader, token)
			}
			return next(ctx, req)
		}
	}
}
