package fins

import "context"

// OperationType names a client operation for interceptors and metrics.
type OperationType string

const (
	OpReadWords       OperationType = "ReadWords"
	OpReadBCD16       OperationType = "ReadBCD16"
	OpReadSignedBCD16 OperationType = "ReadSignedBCD16"
	OpReadBytes       OperationType = "ReadBytes"
	OpReadString      OperationType = "ReadString"
	OpReadBits        OperationType = "ReadBits"
	OpReadClock       OperationType = "ReadClock"
	OpReadStatus      OperationType = "ReadCPUUnitStatus"

	OpWriteWords       OperationType = "WriteWords"
	OpWriteBCD16       OperationType = "WriteBCD16"
	OpWriteSignedBCD16 OperationType = "WriteSignedBCD16"
	OpWriteBytes       OperationType = "WriteBytes"
	OpWriteString      OperationType = "WriteString"
	OpWriteBits        OperationType = "WriteBits"
	OpWriteClock       OperationType = "WriteClock"

	OpSetBit    OperationType = "SetBit"
	OpResetBit  OperationType = "ResetBit"
	OpToggleBit OperationType = "ToggleBit"
	OpSetName   OperationType = "SetUnitName"
	OpRun       OperationType = "Run"
	OpStop      OperationType = "Stop"
)

// InterceptorInfo describes the operation being performed.
type InterceptorInfo struct {
	Operation OperationType
	Address   string // textual PLC address, empty for addressless commands
	Count     int    // element count for bulk operations
	Format    BCDFormat
	Data      interface{} // payload of write operations
}

// Invoker executes the intercepted operation.
type Invoker func(ctx context.Context) (interface{}, error)

// Interceptor wraps every client operation. It may log, time, validate,
// retry, modify the context, or short-circuit by not calling invoker.
//
// A minimal timing interceptor:
//
//	client.SetInterceptor(func(ctx context.Context, info *fins.InterceptorInfo, invoke fins.Invoker) (interface{}, error) {
//		start := time.Now()
//		result, err := invoke(ctx)
//		log.Printf("%s took %v", info.Operation, time.Since(start))
//		return result, err
//	})
type Interceptor func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error)

// ChainInterceptors composes interceptors so the first one wraps the
// second, the second the third, and so on.
func ChainInterceptors(interceptors ...Interceptor) Interceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	rest := ChainInterceptors(interceptors[1:]...)
	return func(ctx context.Context, info *InterceptorInfo, invoker Invoker) (interface{}, error) {
		return interceptors[0](ctx, info, func(ctx context.Context) (interface{}, error) {
			return rest(ctx, info, invoker)
		})
	}
}
