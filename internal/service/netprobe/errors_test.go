package netprobe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Codes(t *testing.T) {
	notFound := &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}
	e := Classify(fmt.Errorf("dial: %w", notFound))
	assert.Equal(t, CodeNotFound, e.Code)
	assert.Equal(t, "Host not found", e.Message)

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	e = Classify(refused)
	assert.Equal(t, CodeRefused, e.Code)
	assert.Equal(t, "Connection refused", e.Message)

	e = Classify(context.DeadlineExceeded)
	assert.Equal(t, CodeTimeout, e.Code)
	assert.Equal(t, "Connection timeout", e.Message)

	e = Classify(errors.New("tls: handshake failure"))
	assert.Equal(t, CodeUnknown, e.Code)
	assert.Equal(t, "Failed to connect to server", e.Message)
	assert.Equal(t, "tls: handshake failure", e.Details)
}

func TestClassify_AlreadyClassified(t *testing.T) {
	orig := &Error{Code: CodeReset, Message: "x"}
	assert.Same(t, orig, Classify(fmt.Errorf("wrap: %w", orig)))
}

func TestSettle_ResultFirst(t *testing.T) {
	v, err := Settle(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSettle_TimeoutFirst(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	_, err := Settle(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	var ne *Error
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, CodeTimeout, ne.Code)
}
