// Package chain follows issuer references from a leaf certificate through
// the certificates a server presented.
package chain

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
)

// MaxDepth bounds the walk so that cross-signed cycles terminate.
const MaxDepth = 20

var ErrChainTooLong = errors.New("certificate chain exceeds maximum depth")

// Walk returns the ordered chain starting at leaf. Each step moves to the
// issuer found in pool and the walk stops at a self-issued certificate or
// when no issuer is available. Issuer/subject continuity is reported by
// the links themselves, not enforced.
func Walk(leaf *x509.Certificate, pool []*x509.Certificate) ([]model.ChainLink, error) {
	var visited []*x509.Certificate

	for cur := leaf; cur != nil; {
		if len(visited) == MaxDepth {
			return nil, fmt.Errorf("%w (%d)", ErrChainTooLong, MaxDepth)
		}
		visited = append(visited, cur)

		issuer := Issuer(cur, pool)
		if issuer == nil || certinfo.Fingerprint256(issuer.Raw) == certinfo.Fingerprint256(cur.Raw) {
			break
		}
		cur = issuer
	}

	links := make([]model.ChainLink, len(visited))
	for i, c := range visited {
		links[i] = model.ChainLink{
			Subject:        certinfo.Name(c.Subject),
			Issuer:         certinfo.Name(c.Issuer),
			ValidFrom:      c.NotBefore.UTC(),
			ValidTo:        c.NotAfter.UTC(),
			SerialNumber:   certinfo.Serial(c.SerialNumber),
			Fingerprint:    certinfo.Fingerprint(c.Raw),
			Fingerprint256: certinfo.Fingerprint256(c.Raw),
			Level:          certinfo.Level(i, len(visited)),
		}
	}
	return links, nil
}

// Issuer returns the certificate in pool that issued cert. A candidate
// whose key verifies cert's signature is preferred over one that only
// matches by name; a self-signed cert is its own issuer.
func Issuer(cert *x509.Certificate, pool []*x509.Certificate) *x509.Certificate {
	if bytes.Equal(cert.RawSubject, cert.RawIssuer) && cert.CheckSignatureFrom(cert) == nil {
		return cert
	}

	var byName *x509.Certificate
	for _, c := range pool {
		if !bytes.Equal(c.RawSubject, cert.RawIssuer) {
			continue
		}
		if cert.CheckSignatureFrom(c) == nil {
			return c
		}
		if byName == nil {
			byName = c
		}
	}
	return byName
}
