// Package portscan checks whether a single TCP port accepts connections.
package portscan

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
)

const DefaultTimeout = 5 * time.Second

const unknownService = "Unknown Service"

var wellKnown = map[int]string{
	20:    "FTP Data",
	21:    "FTP Control",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	143:   "IMAP",
	443:   "HTTPS",
	465:   "SMTPS",
	587:   "SMTP",
	993:   "IMAPS",
	995:   "POP3S",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	8080:  "HTTP Proxy",
	8443:  "HTTPS Alt",
	27017: "MongoDB",
}

// ServiceName returns the conventional service on port.
func ServiceName(port int) string {
	if name, ok := wellKnown[port]; ok {
		return name
	}
	return unknownService
}

type Scanner struct {
	guard   *netprobe.Guard
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewScanner(guard *netprobe.Guard, timeout time.Duration, log logrus.FieldLogger) *Scanner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scanner{guard: guard, timeout: timeout, log: log.WithField("component", "portscan")}
}

// Scan attempts a TCP connection to host:port. A closed or filtered port
// is a successful scan with IsOpen false; only invalid input is an error.
func (s *Scanner) Scan(ctx context.Context, host string, port int) (*model.PortScanResult, error) {
	host = strings.TrimSpace(host)
	if len(host) > netprobe.MaxHostnameLength {
		return nil, netprobe.ErrHostnameTooLong
	}
	if err := netprobe.ValidatePort(port); err != nil {
		return nil, err
	}
	addr, err := s.guard.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	res := &model.PortScanResult{
		Host:        host,
		IPAddress:   addr.String(),
		Port:        port,
		ServiceName: ServiceName(port),
	}

	start := time.Now()
	_, err = netprobe.Settle(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, dial(ctx, addr, port)
	})
	if err != nil {
		res.ErrorType = netprobe.Classify(err).Code
		s.log.WithFields(logrus.Fields{"host": host, "port": port, "code": res.ErrorType}).Debug("port closed")
		return res, nil
	}

	elapsed := time.Since(start).Milliseconds()
	res.IsOpen = true
	res.ResponseTime = &elapsed
	return res, nil
}

func dial(ctx context.Context, addr netip.Addr, port int) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.String(), strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return conn.Close()
}
