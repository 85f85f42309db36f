package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/karkkilista/internal/metrics"
)

// callObserver is told about every finished call, unary or streaming.
type callObserver func(ctx context.Context, procedure string, streaming bool, elapsed time.Duration, err error)

// observer adapts a callObserver to connect.Interceptor. Client-side streams
// are passed through untouched.
type observer struct {
	observe callObserver
}

func (o observer) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		o.observe(ctx, req.Spec().Procedure, false, time.Since(start), err)
		return resp, err
	}
}

func (o observer) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (o observer) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		err := next(ctx, conn)
		o.observe(ctx, conn.Spec().Procedure, true, time.Since(start), err)
		return err
	}
}

// LoggingInterceptor logs every finished call with its procedure, caller and
// duration. Client mistakes are warnings; internal failures are errors.
func LoggingInterceptor() connect.Interceptor {
	return observer{observe: logCall}
}

func logCall(ctx context.Context, procedure string, streaming bool, elapsed time.Duration, err error) {
	attrs := []any{
		"procedure", procedure,
		"user_id", GetUserID(ctx),
		"duration_ms", elapsed.Milliseconds(),
	}
	if streaming {
		attrs = append(attrs, "stream", true)
	}

	switch code := connect.CodeOf(err); {
	case err == nil:
		slog.Info("RPC ok", attrs...)
	case code == connect.CodeCanceled && streaming:
		// Watchers hang up by cancelling; that is the normal end of a stream.
		slog.Info("RPC ok", attrs...)
	case code == connect.CodeInternal || code == connect.CodeUnknown:
		slog.Error("RPC error", append(attrs, "error", err)...)
	default:
		slog.Warn("RPC error", append(attrs, "code", code, "error", err)...)
	}
}

// MetricsInterceptor counts finished calls by procedure and result code.
func MetricsInterceptor() connect.Interceptor {
	return observer{observe: countCall}
}

func countCall(_ context.Context, procedure string, _ bool, _ time.Duration, err error) {
	code := "ok"
	if err != nil {
		code = connect.CodeOf(err).String()
	}
	metrics.RPCRequestsTotal.WithLabelValues(procedure, code).Inc()
}
