package fins

import (
	"context"
	"fmt"
)

// ValidationInterceptor creates an interceptor that rejects suspicious
// operation parameters before they reach the wire.
//
// Example:
//
//	client.SetInterceptor(fins.ValidationInterceptor())
func ValidationInterceptor() Interceptor {
	return ValidationInterceptorWithLimits(1000, 1000)
}

// ValidationInterceptorWithLimits creates a validation interceptor with
// custom element count ceilings for read and write operations. The engine
// itself will chunk anything within transport limits; these ceilings are a
// policy guard for callers that want tighter bounds.
func ValidationInterceptorWithLimits(maxReadCount, maxWriteCount int) Interceptor {
	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		switch info.Operation {
		case OpReadWords, OpReadBCD16, OpReadSignedBCD16, OpReadBytes, OpReadString, OpReadBits:
			if info.Count < 0 {
				return nil, fmt.Errorf("fins: invalid read count %d", info.Count)
			}
			if info.Count > maxReadCount {
				return nil, fmt.Errorf("fins: read count %d exceeds limit %d", info.Count, maxReadCount)
			}

		case OpWriteWords, OpWriteBCD16, OpWriteSignedBCD16, OpWriteBytes, OpWriteString, OpWriteBits:
			if info.Count > maxWriteCount {
				return nil, fmt.Errorf("fins: write count %d exceeds limit %d", info.Count, maxWriteCount)
			}
		}

		return invoker(ctx)
	}
}

// ReadOnlyInterceptor creates an interceptor that blocks every mutating
// operation.
//
// Example:
//
//	client.SetInterceptor(fins.ReadOnlyInterceptor())
func ReadOnlyInterceptor() Interceptor {
	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		switch info.Operation {
		case OpWriteWords, OpWriteBCD16, OpWriteSignedBCD16, OpWriteBytes, OpWriteString, OpWriteBits,
			OpWriteClock, OpSetBit, OpResetBit, OpToggleBit, OpSetName, OpRun, OpStop:
			return nil, fmt.Errorf("fins: operation %s not allowed in read-only mode", info.Operation)
		}
		return invoker(ctx)
	}
}
