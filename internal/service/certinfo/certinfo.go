// Package certinfo extracts display fields from X.509 certificates and
// decodes PEM and PKCS#7 certificate bundles.
package certinfo

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const (
	LevelEndEntity    = "End Entity"
	LevelIntermediate = "Intermediate CA"
	LevelRoot         = "Root CA"
	LevelInvalid      = "Invalid Certificate"
)

const msPerDay = 86_400_000

var (
	oidEmailAddress = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
	oidEd448        = asn1.ObjectIdentifier{1, 3, 101, 113}
)

// Extract builds the display model of cert relative to now.
func Extract(cert *x509.Certificate, now time.Time) model.Certificate {
	keyInfo := PublicKey(cert.PublicKey, cert.RawSubjectPublicKeyInfo)
	scts, sctErr := EmbeddedSCTs(cert)

	out := model.Certificate{
		Subject:             Name(cert.Subject),
		Issuer:              Name(cert.Issuer),
		SubjectAltNames:     nonNil(cert.DNSNames),
		ValidFrom:           cert.NotBefore.UTC(),
		ValidTo:             cert.NotAfter.UTC(),
		DaysUntilExpiration: DaysUntilExpiration(cert.NotAfter, now),
		Expired:             now.After(cert.NotAfter),
		SerialNumber:        Serial(cert.SerialNumber),
		Fingerprint:         Fingerprint(cert.Raw),
		Fingerprint256:      Fingerprint256(cert.Raw),
		Version:             cert.Version,
		SignatureAlgorithm:  signatureAlgorithm(cert),
		PublicKeyAlgorithm:  keyInfo.Algorithm,
		PublicKeyInfo:       keyInfo,
		IsCA:                cert.IsCA,
		KeyUsage:            KeyUsageNames(cert.KeyUsage),
		ExtKeyUsage:         ExtKeyUsageNames(cert.ExtKeyUsage),
		Extensions:          Extensions(cert),
		EmbeddedSCTs:        scts,
	}
	if sctErr != nil {
		out.SCTError = sctErr.Error()
	}
	return out
}

// DaysUntilExpiration returns ceil((notAfter - now) / 1 day) computed on
// millisecond precision. Negative values mean the certificate has expired.
func DaysUntilExpiration(notAfter, now time.Time) int {
	diff := notAfter.UnixMilli() - now.UnixMilli()
	return int(math.Ceil(float64(diff) / msPerDay))
}

// Level classifies the certificate at index of a bundle of total entries.
func Level(index, total int) string {
	switch {
	case index == total-1 && total > 1:
		return LevelRoot
	case index > 0:
		return LevelIntermediate
	default:
		return LevelEndEntity
	}
}

func Name(n pkix.Name) model.DistinguishedName {
	dn := model.DistinguishedName{
		CN: n.CommonName,
		O:  first(n.Organization),
		OU: first(n.OrganizationalUnit),
		C:  first(n.Country),
		ST: first(n.Province),
		L:  first(n.Locality),
	}
	for _, atv := range n.Names {
		if atv.Type.Equal(oidEmailAddress) {
			if s, ok := atv.Value.(string); ok {
				dn.EmailAddress = s
			}
		}
	}
	return dn
}

// NameString renders a name as "CN=..., O=..." in a fixed component order.
func NameString(n pkix.Name) string {
	dn := Name(n)
	var parts []string
	for _, kv := range [][2]string{
		{"CN", dn.CN}, {"O", dn.O}, {"OU", dn.OU}, {"C", dn.C},
		{"ST", dn.ST}, {"L", dn.L}, {"emailAddress", dn.EmailAddress},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, ", ")
}

// Fingerprint returns the colon-separated upper-case SHA-1 of der.
func Fingerprint(der []byte) string {
	sum := sha1.Sum(der)
	return colonHex(sum[:])
}

// Fingerprint256 returns the colon-separated upper-case SHA-256 of der.
func Fingerprint256(der []byte) string {
	sum := sha256.Sum256(der)
	return colonHex(sum[:])
}

func Serial(n *big.Int) string {
	if n == nil {
		return ""
	}
	s := strings.ToUpper(n.Text(16))
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return s
}

// CurveSize maps named curves, under their NIST and SECG aliases, to key
// sizes in bits.
func CurveSize(name string) (int, bool) {
	switch name {
	case "P-256", "prime256v1", "secp256r1", "secp256k1":
		return 256, true
	case "P-384", "secp384r1":
		return 384, true
	case "P-521", "secp521r1":
		return 521, true
	}
	return 0, false
}

// PublicKey describes a parsed public key. spki is consulted for key types
// the standard library does not parse.
func PublicKey(pub any, spki []byte) model.PublicKeyInfo {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return model.PublicKeyInfo{Algorithm: "rsa", Size: fmt.Sprintf("%d bits", k.N.BitLen())}
	case *ecdsa.PublicKey:
		info := model.PublicKeyInfo{Algorithm: "ec", Size: "Unknown", Curve: k.Curve.Params().Name}
		if bits, ok := CurveSize(info.Curve); ok {
			info.Size = fmt.Sprintf("%d bits", bits)
		}
		return info
	case ed25519.PublicKey:
		return model.PublicKeyInfo{Algorithm: "ed25519", Size: "256 bits"}
	}
	if _, ok := Ed448PublicKey(spki); ok {
		return model.PublicKeyInfo{Algorithm: "ed448", Size: "456 bits"}
	}
	return model.PublicKeyInfo{Algorithm: "Unknown", Size: "Unknown"}
}

type subjectPublicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// Ed448PublicKey extracts an Ed448 key from a DER SubjectPublicKeyInfo.
func Ed448PublicKey(spki []byte) (ed448.PublicKey, bool) {
	if len(spki) == 0 {
		return nil, false
	}
	var info subjectPublicKeyInfo
	if rest, err := asn1.Unmarshal(spki, &info); err != nil || len(rest) > 0 {
		return nil, false
	}
	if !info.Algorithm.Algorithm.Equal(oidEd448) || len(info.PublicKey.Bytes) != ed448.PublicKeySize {
		return nil, false
	}
	return ed448.PublicKey(info.PublicKey.Bytes), true
}

func signatureAlgorithm(cert *x509.Certificate) string {
	if cert.SignatureAlgorithm == x509.UnknownSignatureAlgorithm {
		return "Unknown"
	}
	return cert.SignatureAlgorithm.String()
}

func colonHex(b []byte) string {
	h := strings.ToUpper(hex.EncodeToString(b))
	var sb strings.Builder
	sb.Grow(len(h) + len(h)/2)
	for i := 0; i < len(h); i += 2 {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(h[i : i+2])
	}
	return sb.String()
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
