package portscan

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
)

func newScanner(allowPrivate bool) *Scanner {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewScanner(netprobe.NewGuard(allowPrivate), time.Second, l)
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "HTTPS", ServiceName(443))
	assert.Equal(t, "MongoDB", ServiceName(27017))
	assert.Equal(t, "SMTP", ServiceName(587))
	assert.Equal(t, "Unknown Service", ServiceName(12345))
}

func TestScan_Open(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	port := ln.Addr().(*net.TCPAddr).Port

	res, err := newScanner(true).Scan(context.Background(), "127.0.0.1", port)
	require.NoError(t, err)
	assert.True(t, res.IsOpen)
	assert.Equal(t, "127.0.0.1", res.IPAddress)
	require.NotNil(t, res.ResponseTime)
	assert.GreaterOrEqual(t, *res.ResponseTime, int64(0))
	assert.Empty(t, res.ErrorType)
}

func TestScan_Closed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	res, err := newScanner(true).Scan(context.Background(), "127.0.0.1", port)
	require.NoError(t, err)
	assert.False(t, res.IsOpen)
	assert.Nil(t, res.ResponseTime)
	assert.Equal(t, netprobe.CodeRefused, res.ErrorType)
}

func TestScan_Rejections(t *testing.T) {
	s := newScanner(false)

	_, err := s.Scan(context.Background(), "10.0.0.5", 22)
	assert.ErrorIs(t, err, netprobe.ErrPrivateNetwork)

	_, err = s.Scan(context.Background(), "example.com", 0)
	assert.ErrorIs(t, err, netprobe.ErrInvalidPort)

	_, err = s.Scan(context.Background(), strings.Repeat("a", 254), 22)
	assert.ErrorIs(t, err, netprobe.ErrHostnameTooLong)
}
