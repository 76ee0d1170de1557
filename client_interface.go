package fins

import (
	"context"
	"encoding/binary"
	"time"
)

// Configuration operations.
type ClientConfig interface {
	SetByteOrder(o binary.ByteOrder)
	SetTimeout(d time.Duration)
	SetResendLimit(n int)
}

// Auto-reconnect controls.
type AutoReconnect interface {
	EnableAutoReconnect(maxRetries int, initialDelay time.Duration)
	DisableAutoReconnect()
	IsReconnecting() bool
}

// Interceptor/plugin hooks.
type ClientHooks interface {
	SetInterceptor(interceptor Interceptor)
	Use(plugins ...Plugin) error
}

// Lifecycle controls.
type ClientLifecycle interface {
	State() SessionState
	IsClosed() bool
	Close() error
	Shutdown() error
}

// Read operations. Addresses are textual, e.g. "DM100" or "CIO20.07".
type ClientReader interface {
	ReadWords(ctx context.Context, address string, count int) ([]uint16, error)
	ReadBCD16(ctx context.Context, address string, count int) ([]uint16, error)
	ReadSignedBCD16(ctx context.Context, address string, count int, format BCDFormat) ([]int16, error)
	ReadBytes(ctx context.Context, address string, wordCount int) ([]byte, error)
	ReadString(ctx context.Context, address string, wordCount int) (string, error)
	ReadBits(ctx context.Context, address string, count int) ([]bool, error)
	ReadClock(ctx context.Context) (*time.Time, error)
	ReadCPUUnitStatus(ctx context.Context) (*CPUUnitStatus, error)
}

// Write operations.
type ClientWriter interface {
	WriteWords(ctx context.Context, address string, data []uint16) error
	WriteBCD16(ctx context.Context, address string, values []uint16) error
	WriteSignedBCD16(ctx context.Context, address string, values []int16, format BCDFormat) error
	WriteBytes(ctx context.Context, address string, b []byte) error
	WriteString(ctx context.Context, address string, s string) error
	WriteBits(ctx context.Context, address string, data []bool) error
	SetBit(ctx context.Context, address string) error
	ResetBit(ctx context.Context, address string) error
	ToggleBit(ctx context.Context, address string) error
	WriteClock(ctx context.Context, t time.Time) error
}

// CPU unit controls.
type ClientControl interface {
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
	SetUnitName(ctx context.Context, name string) error
}

// FINSClient defines the public contract of Client for easier testing/mocking.
type FINSClient interface {
	ClientConfig
	AutoReconnect
	ClientHooks
	ClientLifecycle
	ClientReader
	ClientWriter
	ClientControl
}

// Ensure Client implements the interface.
var _ FINSClient = (*Client)(nil)
