/*
Package fins implements the Omron FINS (Factory Interface Network Service)
protocol for communication with Omron PLCs over UDP and FINS/TCP.

Memory is addressed with the textual notation of the programming consoles:
an area token followed by a decimal word address and, for bit operations, a
dot and bit index, e.g. "DM100", "CIO20.07", "W0.15".

# Features

  - Textual address resolution against a memory area table
  - Word, byte, string and bit transfers with transparent chunking
  - Unsigned and signed BCD transfers with a sentinel for corrupt words
  - UDP and FINS/TCP transports behind the same client
  - Context-based cancellation and per-transaction timeout with resend
  - PLC simulator for testing

# Quick Start

Basic usage example:

	import (
		"context"
		"log"
		"time"
		"github.com/w954577521/libfins"
	)

	func main() {
		// Create addresses
		clientAddr := fins.NewAddress("", 9600, 0, 2, 0)
		plcAddr := fins.NewAddress("192.168.1.100", 9600, 0, 1, 0)

		// Create client
		client, err := fins.NewUDPClient(clientAddr, plcAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		// Create context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Read words from PLC
		data, err := client.ReadWords(ctx, "DM100", 5)
		if err != nil {
			log.Printf("Read error: %v", err)
			return
		}
		log.Printf("Data: %v", data)

		// Write words to PLC
		err = client.WriteWords(ctx, "DM100", []uint16{1, 2, 3})
		if err != nil {
			log.Printf("Write error: %v", err)
		}
	}

# Transports

NewUDPClient exchanges one FINS frame per datagram. NewTCPClient speaks
FINS/TCP: a handshake followed by length-prefixed frames on one stream,
which also raises the per-transaction element limits. Reads and writes
larger than the transport limit are split into multiple transactions
automatically; chunks run in order, so a failure mid-transfer leaves the
leading chunks already applied.

# Timeouts and Resends

Each transaction waits for the response carrying its service id:

	client.SetTimeout(500 * time.Millisecond)
	client.SetResendLimit(2) // retransmit twice before giving up

	_, err := client.ReadWords(ctx, "DM0", 1)
	var te fins.ResponseTimeoutError
	if errors.As(err, &te) {
		log.Printf("no answer after %d resends", te.Resends)
	}

A timeout of zero disables the per-transaction timer; the operation then
waits until the context expires.

# Auto-Reconnect Support

The client supports automatic reconnection with exponential backoff:

	client, _ := fins.NewUDPClient(clientAddr, plcAddr)

	// Enable auto-reconnect with max 5 retries and 1s initial delay
	client.EnableAutoReconnect(5, 1*time.Second)

	// Check if reconnecting
	if client.IsReconnecting() {
		log.Println("Reconnecting...")
	}

	// Graceful shutdown (stops reconnection attempts)
	defer client.Shutdown()

# Interceptors

Interceptors add custom logic around all FINS operations. Use them for
logging, metrics, validation, retries, and more:

	// Logging interceptor (zap)
	logger, _ := zap.NewProduction()
	client.SetInterceptor(fins.LoggingInterceptor(logger))

	// Metrics collection
	metrics := fins.NewMetricsCollector()
	client.SetInterceptor(metrics.Interceptor())

	// Chain multiple interceptors
	client.SetInterceptor(fins.ChainInterceptors(
		fins.LoggingInterceptor(logger),
		metrics.Interceptor(),
		fins.ValidationInterceptor(),
	))

# BCD Transfers

ReadBCD16 and ReadSignedBCD16 decode wire words as BCD. A word that does
not decode under the selected format does not fail the read; it appears in
the result as fins.InvalidBCDValue:

	values, err := client.ReadBCD16(ctx, "DM200", 10)
	for i, v := range values {
		if v == fins.InvalidBCDValue {
			log.Printf("word %d is not BCD", i)
		}
	}

Writes run the other way: an out-of-range value fails with BCDRangeError
before anything is transmitted.

# Error Handling

The package provides specific error types:

  - ClientClosedError - operations on a closed client
  - NotConnectedError - operations outside the Connected state
  - InvalidAddressError / InvalidAreaError - textual address rejected
  - ResponseTimeoutError - no response within the timeout and resends
  - EndCodeError - the PLC answered with a non-zero end code; Category()
    classifies it (busy, unsupported, access denied, ...)
  - BCDRangeError - value outside the selected BCD format's domain

Errors from the listen loop are sent to a channel:

	go func() {
		if err := <-client.Err(); err != nil {
			log.Printf("Client error: %v", err)
		}
	}()

# Testing with PLC Simulator

The package includes a PLC simulator backed by real area storage:

	plcAddr := fins.NewAddress("127.0.0.1", 9600, 0, 10, 0)
	simulator, err := fins.NewPLCSimulator(plcAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer simulator.Close()

	clientAddr := fins.NewAddress("127.0.0.1", 9601, 0, 2, 0)
	client, _ := fins.NewUDPClient(clientAddr, plcAddr)

Tests that only need memory semantics can skip the socket entirely:

	ic := simulator.InlineClient()
	_ = ic.WriteWords(context.Background(), "DM0", []uint16{42})
*/
package fins
