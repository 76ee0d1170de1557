package fins

import (
	"context"
	"fmt"
	"time"
)

// RetryInterceptor creates an interceptor that retries failed operations
// up to maxRetries times with a fixed delay between attempts. Context
// errors are never retried. Note that a chunked operation restarts from
// its first chunk on retry.
//
// Example:
//
//	client.SetInterceptor(fins.RetryInterceptor(3, 100*time.Millisecond))
func RetryInterceptor(maxRetries int, delay time.Duration) Interceptor {
	return RetryInterceptorConditional(maxRetries, delay, func(error) bool { return true })
}

// RetryInterceptorWithBackoff retries with exponential backoff: the delay
// doubles after each attempt up to maxDelay.
//
// Example:
//
//	client.SetInterceptor(fins.RetryInterceptorWithBackoff(3, 100*time.Millisecond, time.Second))
func RetryInterceptorWithBackoff(maxRetries int, initialDelay, maxDelay time.Duration) Interceptor {
	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		var result interface{}
		var err error
		delay := initialDelay

		for attempt := 0; attempt <= maxRetries; attempt++ {
			result, err = invoker(ctx)
			if err == nil {
				return result, nil
			}
			if ctx.Err() != nil {
				return nil, err
			}
			if attempt < maxRetries {
				time.Sleep(delay)
				delay *= 2
				if delay > maxDelay {
					delay = maxDelay
				}
			}
		}

		return result, fmt.Errorf("fins: operation failed after %d attempts: %w", maxRetries+1, err)
	}
}

// RetryInterceptorConditional retries only errors for which shouldRetry
// returns true.
//
// Example:
//
//	shouldRetry := func(err error) bool {
//		var timeout fins.ResponseTimeoutError
//		return errors.As(err, &timeout)
//	}
//	client.SetInterceptor(fins.RetryInterceptorConditional(3, 100*time.Millisecond, shouldRetry))
func RetryInterceptorConditional(maxRetries int, delay time.Duration, shouldRetry func(error) bool) Interceptor {
	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		var result interface{}
		var err error

		for attempt := 0; attempt <= maxRetries; attempt++ {
			result, err = invoker(ctx)
			if err == nil {
				return result, nil
			}
			if ctx.Err() != nil {
				return nil, err
			}
			if !shouldRetry(err) {
				return result, err
			}
			if attempt < maxRetries {
				time.Sleep(delay)
			}
		}

		return result, fmt.Errorf("fins: operation failed after %d attempts: %w", maxRetries+1, err)
	}
}
