package fins

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingInterceptor creates an interceptor that logs every operation with
// its duration and outcome.
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	client.SetInterceptor(fins.LoggingInterceptor(logger))
//
// Output:
//
//	INFO	FINS	starting	{"operation": "ReadWords", "address": "DM100", "count": 5}
//	INFO	FINS	completed	{"operation": "ReadWords", "duration": "1.2ms"}
func LoggingInterceptor(logger *zap.Logger) Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Named logger keeps a consistent component label.
	logger = logger.Named("FINS")

	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		start := time.Now()

		logger.Info("starting",
			zap.String("operation", string(info.Operation)),
			zap.String("address", info.Address),
			zap.Int("count", info.Count),
		)

		result, err := invoker(ctx)

		duration := time.Since(start)
		if err != nil {
			logger.Error("failed",
				zap.String("operation", string(info.Operation)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			logger.Info("completed",
				zap.String("operation", string(info.Operation)),
				zap.Duration("duration", duration),
			)
		}

		return result, err
	}
}
