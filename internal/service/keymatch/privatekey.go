package keymatch

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"strings"

	"github.com/cloudflare/circl/sign/ed448"
)

var (
	oidX448  = asn1.ObjectIdentifier{1, 3, 101, 111}
	oidEd448 = asn1.ObjectIdentifier{1, 3, 101, 113}
)

// x448Key is a parsed X448 key. It is recognised but cannot sign.
type x448Key []byte

type pkcs8 struct {
	Version    int
	Algo       pkix.AlgorithmIdentifier
	PrivateKey []byte
}

// ParsePrivateKey decodes the first PEM block of keyPEM, trying PKCS#1,
// PKCS#8 and SEC 1 encodings before the Ed448 and X448 PKCS#8 wrappers.
// Keys that parse but cannot sign, such as X25519, are returned as well.
func ParsePrivateKey(keyPEM string) (crypto.PrivateKey, error) {
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil || !strings.HasSuffix(block.Type, "PRIVATE KEY") {
		return nil, ErrInvalidPrivateKey
	}
	if block.Type == "ENCRYPTED PRIVATE KEY" || block.Headers["Proc-Type"] != "" {
		return nil, ErrEncryptedKey
	}
	der := block.Bytes

	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParseECPrivateKey(der); err == nil {
		return k, nil
	}
	if k, ok := parseEd448(der); ok {
		return k, nil
	}
	if k, ok := parseX448(der); ok {
		return k, nil
	}
	return nil, ErrInvalidPrivateKey
}

func parseX448(der []byte) (x448Key, bool) {
	var p pkcs8
	if _, err := asn1.Unmarshal(der, &p); err != nil || !p.Algo.Algorithm.Equal(oidX448) {
		return nil, false
	}
	var raw []byte
	if _, err := asn1.Unmarshal(p.PrivateKey, &raw); err != nil {
		return nil, false
	}
	return x448Key(raw), true
}

func parseEd448(der []byte) (ed448.PrivateKey, bool) {
	var p pkcs8
	if _, err := asn1.Unmarshal(der, &p); err != nil || !p.Algo.Algorithm.Equal(oidEd448) {
		return nil, false
	}
	var seed []byte
	if _, err := asn1.Unmarshal(p.PrivateKey, &seed); err != nil || len(seed) != ed448.SeedSize {
		return nil, false
	}
	return ed448.NewKeyFromSeed(seed), true
}
