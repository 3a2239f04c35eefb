package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogRequests logs every round trip at debug level and failures at warn level.
func LogRequests(logger *zap.Logger) Middleware {
	return func(ctx context.Context, in *InvokeInput, next InvokeFunc) (*RawResponse, error) {
		start := time.Now()
		logger.Debug("sending chat completion",
			zap.String("model", in.ModelID),
			zap.Int("body_bytes", len(in.Body)),
		)

		resp, err := next(ctx, in)
		if err != nil {
			logger.Warn("chat completion failed",
				zap.String("model", in.ModelID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return nil, err
		}

		logger.Debug("received chat completion",
			zap.String("model", in.ModelID),
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(resp.Body)),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, nil
	}
}
