// Package keymatch decides whether a private key belongs to a certificate
// by signing a probe with the key and verifying it with the certificate.
package keymatch

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
)

const MaxInputLength = 50_000

const (
	probe          = "test-data-for-key-matching"
	detailsMatch   = "Private key matches the certificate public key"
	detailsNoMatch = "Private key does NOT match the certificate public key"
)

var (
	ErrCertificateRequired = errors.New("certificate is required")
	ErrPrivateKeyRequired  = errors.New("private key is required")
	ErrInputTooLarge       = errors.New("input too large (max 50KB each)")
	ErrInvalidCertificate  = errors.New("invalid certificate format, expected PEM")
	ErrInvalidPrivateKey   = errors.New("invalid private key format")
	ErrEncryptedKey        = errors.New("encrypted private keys are not supported")
)

var supportedTypes = map[string]bool{"rsa": true, "ec": true, "ed25519": true, "ed448": true}

// Match reports whether keyPEM is the private half of the key certified by
// certPEM. Key material is never compared directly. A key of a different
// type than the certificate, or one that cannot sign, is a non-match with
// the compatibility verdict explaining why, not an error.
func Match(certPEM, keyPEM string, now time.Time) (*model.KeyMatchResult, error) {
	certPEM, keyPEM = strings.TrimSpace(certPEM), strings.TrimSpace(keyPEM)
	switch {
	case certPEM == "":
		return nil, ErrCertificateRequired
	case keyPEM == "":
		return nil, ErrPrivateKeyRequired
	case len(certPEM) > MaxInputLength || len(keyPEM) > MaxInputLength:
		return nil, ErrInputTooLarge
	}

	cert, err := parseCertificate(certPEM)
	if err != nil {
		return nil, err
	}
	key, err := ParsePrivateKey(keyPEM)
	if err != nil {
		return nil, err
	}

	keyType, size := Describe(key)
	matches := false
	if sig, err := sign(key); err == nil {
		matches = verify(cert, sig)
	}

	res := &model.KeyMatchResult{
		Matches:      matches,
		MatchDetails: detailsNoMatch,
		Certificate: model.KeyMatchCertificate{
			Subject:             certinfo.NameString(cert.Subject),
			Issuer:              certinfo.NameString(cert.Issuer),
			ValidFrom:           cert.NotBefore.UTC(),
			ValidTo:             cert.NotAfter.UTC(),
			SerialNumber:        certinfo.Serial(cert.SerialNumber),
			Fingerprint:         certinfo.Fingerprint(cert.Raw),
			Fingerprint256:      certinfo.Fingerprint256(cert.Raw),
			DaysUntilExpiration: certinfo.DaysUntilExpiration(cert.NotAfter, now),
		},
		PrivateKey: model.PrivateKeyInfo{Type: keyType, Size: size, Format: "PEM"},
		Compatibility: model.KeyCompatibility{
			KeyType:   keyType,
			Supported: supportedTypes[keyType],
			Algorithm: "SHA256 with " + keyType,
		},
	}
	if matches {
		res.MatchDetails = detailsMatch
	}
	return res, nil
}

func parseCertificate(certPEM string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, ErrInvalidCertificate
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
	}
	return cert, nil
}

// Describe returns the key type name and its size.
func Describe(key crypto.PrivateKey) (keyType, size string) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return "rsa", fmt.Sprintf("%d bits", k.N.BitLen())
	case *ecdsa.PrivateKey:
		if bits, ok := certinfo.CurveSize(k.Curve.Params().Name); ok {
			return "ec", fmt.Sprintf("%d bits", bits)
		}
		return "ec", "Unknown"
	case ed25519.PrivateKey:
		return "ed25519", "256 bits"
	case ed448.PrivateKey:
		return "ed448", "456 bits"
	case *ecdh.PrivateKey:
		if k.Curve() == ecdh.X25519() {
			return "x25519", "256 bits"
		}
		return "ecdh", "Unknown"
	case x448Key:
		return "x448", "448 bits"
	}
	return "unknown", "Unknown"
}

func sign(key crypto.PrivateKey) ([]byte, error) {
	digest := sha256.Sum256([]byte(probe))
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, digest[:])
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(rand.Reader, k, digest[:])
	case ed25519.PrivateKey:
		return ed25519.Sign(k, []byte(probe)), nil
	case ed448.PrivateKey:
		return ed448.Sign(k, []byte(probe), ""), nil
	}
	return nil, fmt.Errorf("unsupported key type %T", key)
}

func verify(cert *x509.Certificate, sig []byte) bool {
	digest := sha256.Sum256([]byte(probe))
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig) == nil
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(pub, digest[:], sig)
	case ed25519.PublicKey:
		return len(sig) == ed25519.SignatureSize && ed25519.Verify(pub, []byte(probe), sig)
	}
	if pub, ok := certinfo.Ed448PublicKey(cert.RawSubjectPublicKeyInfo); ok {
		return len(sig) == ed448.SignatureSize && ed448.Verify(pub, []byte(probe), sig, "")
	}
	return false
}
