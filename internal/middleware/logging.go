package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/feeledger/pkg/api"
)

// LoggingInterceptor logs one line per RPC: procedure, operator, the family
// it acted on, the result code and, for batches, how many records changed.
// Register it after RequireAuth so the operator is known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"operator_id", GetOperatorID(ctx), // empty when auth is off
			}
			if scoped, ok := req.Any().(api.FamilyScoped); ok {
				attrs = append(attrs, "family_key", scoped.GetFamilyKey())
			}

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			if err != nil {
				code := connect.CodeOf(err)
				attrs = append(attrs, "code", code.String(), "error", err)
				// Batches stopped by the store and server faults need attention;
				// rejected input does not.
				if code == connect.CodeAborted || code == connect.CodeInternal || code == connect.CodeUnknown {
					slog.Error("RPC failed", attrs...)
				} else {
					slog.Warn("RPC rejected", attrs...)
				}
				return resp, err
			}

			attrs = append(attrs, "code", "ok")
			if resp != nil {
				if counted, ok := resp.Any().(api.RecordCounter); ok {
					attrs = append(attrs, "records", counted.RecordCount())
				}
			}
			slog.Info("RPC ok", attrs...)

			return resp, err
		}
	}
}
