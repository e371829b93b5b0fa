// Package sslcheck connects to a TLS endpoint and reports on the
// certificate it presents.
package sslcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ocsp"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/chain"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/matcher"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
)

const (
	DefaultPort    = 443
	DefaultTimeout = 10 * time.Second
	MaxURLLength   = 2000
)

var (
	ErrURLRequired       = errors.New("URL is required")
	ErrURLTooLong        = errors.New("URL too long")
	ErrNoPeerCertificate = errors.New("failed to retrieve certificate")
)

type Checker struct {
	guard   *netprobe.Guard
	timeout time.Duration
	roots   *x509.CertPool
	now     func() time.Time
	log     logrus.FieldLogger
}

type Option func(*Checker)

// WithRoots sets the trust anchors used to compute the authorized flag.
// The system pool is used by default.
func WithRoots(pool *x509.CertPool) Option {
	return func(c *Checker) { c.roots = pool }
}

func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

func NewChecker(guard *netprobe.Guard, timeout time.Duration, log logrus.FieldLogger, opts ...Option) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Checker{
		guard:   guard,
		timeout: timeout,
		now:     time.Now,
		log:     log.WithField("component", "sslcheck"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check performs a TLS handshake with target (a URL or hostname) on port
// and describes the presented certificate. Verification failures do not
// fail the check; they are reported through Authorized and
// AuthorizationError. Connection failures are returned as *netprobe.Error.
func (c *Checker) Check(ctx context.Context, target string, port int) (*model.SSLCheckResult, error) {
	if target == "" {
		return nil, ErrURLRequired
	}
	if len(target) > MaxURLLength {
		return nil, ErrURLTooLong
	}
	if err := netprobe.ValidatePort(port); err != nil {
		return nil, err
	}

	host, err := netprobe.HostFromURL(target)
	if err != nil {
		return nil, err
	}
	addr, err := c.guard.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{"host": host, "ip": addr.String(), "port": port}).Debug("starting TLS handshake")

	state, err := netprobe.Settle(ctx, c.timeout, func(ctx context.Context) (tls.ConnectionState, error) {
		return handshake(ctx, host, addr, port)
	})
	if err != nil {
		classified := netprobe.Classify(err)
		c.log.WithFields(logrus.Fields{"host": host, "code": classified.Code}).WithError(err).Info("TLS handshake failed")
		return nil, classified
	}

	return c.inspect(host, addr, port, state)
}

func handshake(ctx context.Context, host string, addr netip.Addr, port int) (tls.ConnectionState, error) {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName: host,
			// Certificate details are wanted even when verification fails.
			InsecureSkipVerify: true, //nolint:gosec
		},
	}

	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.String(), strconv.Itoa(port)))
	if err != nil {
		return tls.ConnectionState{}, err
	}
	defer conn.Close()

	return conn.(*tls.Conn).ConnectionState(), nil
}

func (c *Checker) inspect(host string, addr netip.Addr, port int, state tls.ConnectionState) (*model.SSLCheckResult, error) {
	certs := state.PeerCertificates
	if len(certs) == 0 {
		return nil, ErrNoPeerCertificate
	}
	leaf := certs[0]
	now := c.now()

	links, err := chain.Walk(leaf, certs)
	if err != nil {
		return nil, fmt.Errorf("walk chain: %w", err)
	}

	authErr := c.verify(host, certs, now)
	match := matcher.Match(leaf.Subject.CommonName, leaf.DNSNames, host)

	res := &model.SSLCheckResult{
		Hostname:        host,
		IPAddress:       addr.String(),
		Port:            port,
		Valid:           authErr == nil,
		Authorized:      authErr == nil,
		DomainMatch:     match.Matches,
		DomainMatchInfo: match,
		Certificate: model.SSLCertificate{
			Certificate: certinfo.Extract(leaf, now),
			Protocol:    tls.VersionName(state.Version),
			Cipher:      tls.CipherSuiteName(state.CipherSuite),
		},
		CertificateChain: links,
		ChainLength:      len(links),
		OCSP:             stapledOCSP(state.OCSPResponse, chain.Issuer(leaf, certs)),
		CheckedAt:        now.UTC(),
	}
	if authErr != nil {
		res.AuthorizationError = authErr.Error()
	}
	for i, raw := range state.SignedCertificateTimestamps {
		sct, err := certinfo.ParseSCT(raw, certinfo.SCTSourceTLS)
		if err != nil {
			res.SCTErrors = append(res.SCTErrors, fmt.Sprintf("SCT %d: %v", i+1, err))
			c.log.WithField("host", host).WithError(err).Debug("skipping malformed TLS SCT")
			continue
		}
		res.SCTs = append(res.SCTs, sct)
	}
	return res, nil
}

func (c *Checker) verify(host string, certs []*x509.Certificate, now time.Time) error {
	inter := x509.NewCertPool()
	for _, cert := range certs[1:] {
		inter.AddCert(cert)
	}
	_, err := certs[0].Verify(x509.VerifyOptions{
		DNSName:       host,
		Roots:         c.roots,
		Intermediates: inter,
		CurrentTime:   now,
	})
	return err
}

var ocspStatus = map[int]string{
	ocsp.Good:    "good",
	ocsp.Revoked: "revoked",
	ocsp.Unknown: "unknown",
}

// stapledOCSP parses the OCSP response stapled to the handshake. The
// signature is checked against issuer when one is known.
func stapledOCSP(raw []byte, issuer *x509.Certificate) *model.OCSPStatus {
	if len(raw) == 0 {
		return nil
	}
	resp, err := ocsp.ParseResponse(raw, issuer)
	if err != nil {
		return &model.OCSPStatus{Status: "unparseable", Error: err.Error()}
	}

	st := &model.OCSPStatus{
		Status:     ocspStatus[resp.Status],
		ThisUpdate: resp.ThisUpdate.UTC(),
		NextUpdate: resp.NextUpdate.UTC(),
	}
	if resp.Status == ocsp.Revoked {
		at := resp.RevokedAt.UTC()
		st.RevokedAt = &at
	}
	return st
}
