package fins

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterceptorBasic(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	// Track interceptor calls
	var calls []OperationType
	c.SetInterceptor(func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		calls = append(calls, info.Operation)
		return invoker(ctx)
	})

	toWrite := []uint16{1, 2, 3}
	err := c.WriteWords(ctx, "DM100", toWrite)
	assert.Nil(t, err)

	_, err = c.ReadWords(ctx, "DM100", 3)
	assert.Nil(t, err)

	assert.Equal(t, []OperationType{OpWriteWords, OpReadWords}, calls)
}

func TestInterceptorInfoFields(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	var got InterceptorInfo
	c.SetInterceptor(func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		got = *info
		return invoker(ctx)
	})

	_, err := c.ReadSignedBCD16(ctx, "DM200", 4, BCDSigned16Type1)
	assert.Nil(t, err)

	assert.Equal(t, OpReadSignedBCD16, got.Operation)
	assert.Equal(t, "DM200", got.Address)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, BCDSigned16Type1, got.Format)
}

func TestInterceptorChaining(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	// Track execution order
	var order []string

	interceptor1 := func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		order = append(order, "interceptor1-before")
		result, err := invoker(ctx)
		order = append(order, "interceptor1-after")
		return result, err
	}

	interceptor2 := func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		order = append(order, "interceptor2-before")
		result, err := invoker(ctx)
		order = append(order, "interceptor2-after")
		return result, err
	}

	c.SetInterceptor(ChainInterceptors(interceptor1, interceptor2))

	err := c.WriteWords(ctx, "DM100", []uint16{1, 2, 3})
	assert.Nil(t, err)

	assert.Equal(t, []string{
		"interceptor1-before",
		"interceptor2-before",
		"interceptor2-after",
		"interceptor1-after",
	}, order)
}

func TestInterceptorCanShortCircuit(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	// Interceptor that blocks writes
	c.SetInterceptor(func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		if info.Operation == OpWriteWords {
			return nil, fmt.Errorf("writes are blocked")
		}
		return invoker(ctx)
	})

	err := c.WriteWords(ctx, "DM100", []uint16{1, 2, 3})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")

	_, err = c.ReadWords(ctx, "DM100", 3)
	assert.Nil(t, err)
}

func TestInterceptorWithContext(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	type traceKeyType struct{}
	var traceKey traceKeyType
	var capturedTraceID string

	c.SetInterceptor(func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		if id := ctx.Value(traceKey); id != nil {
			capturedTraceID = id.(string)
		}
		return invoker(ctx)
	})

	ctxWithTrace := context.WithValue(ctx, traceKey, "trace-12345")
	err := c.WriteWords(ctxWithTrace, "DM100", []uint16{1, 2, 3})
	assert.Nil(t, err)

	assert.Equal(t, "trace-12345", capturedTraceID)
}

func TestMetricsCollector(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	metrics := NewMetricsCollector()
	c.SetInterceptor(metrics.Interceptor())

	toWrite := []uint16{1, 2, 3}
	assert.Nil(t, c.WriteWords(ctx, "DM100", toWrite))
	_, err := c.ReadWords(ctx, "DM100", 3)
	assert.Nil(t, err)
	_, err = c.ReadWords(ctx, "DM200", 5)
	assert.Nil(t, err)

	// A failing operation counts as both call and error
	_, err = c.ReadWords(ctx, "QQ100", 1)
	assert.Error(t, err)

	reads := metrics.Stats(OpReadWords)
	assert.Equal(t, int64(3), reads.Count)
	assert.Equal(t, int64(1), reads.Errors)
	assert.Greater(t, reads.AvgDuration, time.Duration(0))

	writes := metrics.Stats(OpWriteWords)
	assert.Equal(t, int64(1), writes.Count)
	assert.Equal(t, int64(0), writes.Errors)

	all := metrics.AllStats()
	assert.Len(t, all, 2)
	assert.Equal(t, reads.Count, all[OpReadWords].Count)

	metrics.Reset()
	assert.Equal(t, int64(0), metrics.Stats(OpReadWords).Count)
	assert.Empty(t, metrics.AllStats())
}

func TestRetryInterceptorOnTimeout(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	attempts := 0
	shouldRetry := func(err error) bool {
		var te ResponseTimeoutError
		return errors.As(err, &te)
	}
	c.SetInterceptor(ChainInterceptors(
		RetryInterceptorConditional(2, time.Millisecond, shouldRetry),
		func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
			attempts++
			if attempts < 3 {
				return nil, ResponseTimeoutError{Timeout: time.Millisecond}
			}
			return invoker(ctx)
		},
	))

	vals, err := c.ReadWords(ctx, "DM100", 2)
	assert.Nil(t, err)
	assert.Len(t, vals, 2)
	assert.Equal(t, 3, attempts)
}

func TestRetryInterceptorDoesNotRetryNonMatching(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	shouldRetry := func(err error) bool {
		var te ResponseTimeoutError
		return errors.As(err, &te)
	}
	c.SetInterceptor(RetryInterceptorConditional(3, time.Millisecond, shouldRetry))

	// An address failure is not retryable; it fails once, immediately
	start := time.Now()
	_, err := c.ReadWords(ctx, "QQ100", 1)
	assert.IsType(t, InvalidAreaError{}, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRetryInterceptorExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	attempts := 0
	c.SetInterceptor(ChainInterceptors(
		RetryInterceptor(2, time.Millisecond),
		func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
			attempts++
			return nil, fmt.Errorf("boom")
		},
	))

	_, err := c.ReadWords(ctx, "DM100", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestValidationInterceptor(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	c.SetInterceptor(ValidationInterceptorWithLimits(10, 5))

	_, err := c.ReadWords(ctx, "DM100", 10)
	assert.Nil(t, err)

	_, err = c.ReadWords(ctx, "DM100", 11)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")

	err = c.WriteWords(ctx, "DM100", make([]uint16, 5))
	assert.Nil(t, err)

	err = c.WriteWords(ctx, "DM100", make([]uint16, 6))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestReadOnlyInterceptor(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	// Seed a value before enabling read-only mode
	assert.Nil(t, c.WriteWords(ctx, "DM100", []uint16{42}))

	c.SetInterceptor(ReadOnlyInterceptor())

	vals, err := c.ReadWords(ctx, "DM100", 1)
	assert.Nil(t, err)
	assert.Equal(t, []uint16{42}, vals)

	err = c.WriteWords(ctx, "DM100", []uint16{7})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")

	err = c.SetBit(ctx, "DM100.00")
	assert.Error(t, err)

	err = c.Run(ctx)
	assert.Error(t, err)

	// The blocked write never reached the simulator
	c.SetInterceptor(nil)
	vals, err = c.ReadWords(ctx, "DM100", 1)
	assert.Nil(t, err)
	assert.Equal(t, []uint16{42}, vals)
}

func TestChainInterceptorsEdgeCases(t *testing.T) {
	assert.Nil(t, ChainInterceptors())

	single := func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		return invoker(ctx)
	}
	chained := ChainInterceptors(single)
	assert.NotNil(t, chained)
}

func TestLoggingInterceptorNilLogger(t *testing.T) {
	ctx := context.Background()
	s, c := newTestPair(t)
	defer s.Close()
	defer c.Close()

	// A nil logger degrades to a no-op logger instead of panicking
	c.SetInterceptor(LoggingInterceptor(nil))

	err := c.WriteWords(ctx, "DM100", []uint16{1})
	assert.Nil(t, err)

	_, err = c.ReadWords(ctx, "QQ100", 1)
	assert.Error(t, err)
}
