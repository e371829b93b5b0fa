package certinfo

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudflare/cfssl/crypto/pkcs7"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

// MaxInputLength bounds the PEM text accepted by DecodeBundle.
const MaxInputLength = 100_000

var (
	ErrCertificateRequired = errors.New("certificate is required")
	ErrTooLarge            = errors.New("certificate too large (max 100KB)")
	ErrNoCertificates      = errors.New("no valid certificates found in input")
	ErrNoCertificateInPKCS = errors.New("pkcs7 bundle contains no certificates")
	ErrMalformedBlock      = errors.New("malformed PEM block")
)

var pemSpan = regexp.MustCompile(`(?s)-----BEGIN ([A-Z0-9 #]+)-----.*?-----END [A-Z0-9 #]+-----`)

const (
	blockCertificate = "CERTIFICATE"
	blockPKCS7       = "PKCS7"
)

// entry is a bundle position: a parsed certificate or the reason it could
// not be parsed.
type entry struct {
	cert *x509.Certificate
	err  error
}

// DecodeBundle parses every CERTIFICATE block in pemText independently and
// expands PKCS7 blocks into their certificates. A block that fails to parse
// becomes an "Invalid Certificate" entry without affecting the others.
func DecodeBundle(pemText string, now time.Time) (*model.DecodedBundle, error) {
	pemText = strings.TrimSpace(pemText)
	if pemText == "" {
		return nil, ErrCertificateRequired
	}
	if len(pemText) > MaxInputLength {
		return nil, ErrTooLarge
	}

	entries, err := parseBlocks([]byte(pemText))
	if err != nil {
		return nil, err
	}

	total := len(entries)
	out := &model.DecodedBundle{
		CertificatesFound: total,
		Certificates:      make([]model.DecodedCertificate, 0, total),
		ChainValid:        total > 1,
		DecodedAt:         now.UTC(),
	}

	for i, e := range entries {
		dc := model.DecodedCertificate{Position: i + 1, TotalCertificates: total}
		if e.err != nil {
			dc.CertLevel = LevelInvalid
			dc.Error = fmt.Sprintf("Failed to parse certificate %d: %v", i+1, e.err)
		} else {
			c := Extract(e.cert, now)
			dc.CertLevel = Level(i, total)
			dc.Certificate = &c
		}
		out.Certificates = append(out.Certificates, dc)
	}
	out.IssuerLinksValid = issuerLinksValid(entries)

	return out, nil
}

// ParseCertificates returns the certificates of pemText, failing on the
// first block that does not parse.
func ParseCertificates(pemText string) ([]*x509.Certificate, error) {
	entries, err := parseBlocks([]byte(pemText))
	if err != nil {
		return nil, err
	}
	certs := make([]*x509.Certificate, 0, len(entries))
	for i, e := range entries {
		if e.err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i+1, e.err)
		}
		certs = append(certs, e.cert)
	}
	return certs, nil
}

// parseBlocks gives every BEGIN/END span its own position, so a block
// with a corrupt body is reported where it appears.
func parseBlocks(data []byte) ([]entry, error) {
	var entries []entry
	for _, m := range pemSpan.FindAllSubmatchIndex(data, -1) {
		typ := string(data[m[2]:m[3]])
		if typ != blockCertificate && typ != blockPKCS7 {
			continue
		}
		block, _ := pem.Decode(data[m[0]:m[1]])
		if block == nil {
			entries = append(entries, entry{err: ErrMalformedBlock})
			continue
		}
		switch block.Type {
		case blockCertificate:
			cert, err := x509.ParseCertificate(block.Bytes)
			entries = append(entries, entry{cert: cert, err: err})
		case blockPKCS7:
			certs, err := parsePKCS7(block.Bytes)
			if err != nil {
				entries = append(entries, entry{err: err})
				continue
			}
			for _, c := range certs {
				entries = append(entries, entry{cert: c})
			}
		}
	}
	if len(entries) == 0 {
		return nil, ErrNoCertificates
	}
	return entries, nil
}

func parsePKCS7(der []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(der)
	if err != nil {
		return nil, fmt.Errorf("parse pkcs7: %w", err)
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificateInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// issuerLinksValid reports whether every certificate's issuer is the
// subject of the certificate after it. Unparsed entries break the chain.
func issuerLinksValid(entries []entry) bool {
	if len(entries) < 2 {
		return false
	}
	for i := 0; i < len(entries)-1; i++ {
		cur, next := entries[i].cert, entries[i+1].cert
		if cur == nil || next == nil {
			return false
		}
		if !bytes.Equal(cur.RawIssuer, next.RawSubject) {
			return false
		}
	}
	return true
}
