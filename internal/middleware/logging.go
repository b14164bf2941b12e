package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, user ID, duration, and any error codes/messages.
// Client errors log at WARN, internal ones at ERROR.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			userID := GetUserID(ctx) // empty unless RequireAuth ran first

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()

			if err == nil {
				logger.Info("RPC ok",
					"procedure", procedure,
					"user_id", userID,
					"duration_ms", duration,
				)
				return resp, nil
			}

			code := connect.CodeOf(err)
			var connectErr *connect.Error
			msg := err.Error()
			if errors.As(err, &connectErr) {
				msg = connectErr.Message()
			}

			level := slog.LevelWarn
			if code == connect.CodeInternal || code == connect.CodeUnknown {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "RPC error",
				"procedure", procedure,
				"code", code.String(),
				"error", msg,
				"user_id", userID,
				"duration_ms", duration,
			)
			return resp, err
		}
	}
}
