// Package csr decodes PKCS#10 certificate signing requests.
package csr

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
)

const MaxInputLength = 100_000

const (
	SourceASN1      = "asn1"
	SourceHeuristic = "heuristic"
	SourceNone      = "none"

	AccuracyHigh    = "High"
	AccuracyLimited = "Limited"

	recommendation = "For OpenSSL comparison: openssl req -in your-csr.pem -text -noout"
)

var (
	ErrCSRRequired   = errors.New("CSR is required")
	ErrTooLarge      = errors.New("CSR too large (max 100KB)")
	ErrInvalidFormat = errors.New("invalid CSR format, expected PEM format with CERTIFICATE REQUEST headers")
	ErrMultipleCSRs  = errors.New("multiple CSRs detected, please submit one CSR at a time")
	ErrParse         = errors.New("invalid CSR format")
)

var subjectOIDs = []struct {
	oid  asn1.ObjectIdentifier
	name string
}{
	{asn1.ObjectIdentifier{2, 5, 4, 3}, "CN"},
	{asn1.ObjectIdentifier{2, 5, 4, 10}, "O"},
	{asn1.ObjectIdentifier{2, 5, 4, 11}, "OU"},
	{asn1.ObjectIdentifier{2, 5, 4, 6}, "C"},
	{asn1.ObjectIdentifier{2, 5, 4, 8}, "ST"},
	{asn1.ObjectIdentifier{2, 5, 4, 7}, "L"},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}, "emailAddress"},
}

var attributeNames = map[string]string{
	"1.2.840.113549.1.9.14":  "Extension Request",
	"1.2.840.113549.1.9.7":   "Challenge Password",
	"1.2.840.113549.1.9.2":   "Unstructured Name",
	"1.3.6.1.4.1.311.2.1.14": "Extension Request (Microsoft)",
	"1.3.6.1.4.1.311.13.2.3": "OS Version",
	"1.3.6.1.4.1.311.21.20":  "Client Information",
	"1.3.6.1.4.1.311.13.2.2": "Enrollment CSP",
}

var requestBlockTypes = map[string]bool{
	"CERTIFICATE REQUEST":     true,
	"NEW CERTIFICATE REQUEST": true,
}

// Decode parses a single PEM-encoded CSR. Subject Alternative Names come
// from the extensionRequest attribute; when that yields none but the DER
// still carries the SAN OID, a byte scan recovers candidate names and the
// result is marked with Limited accuracy.
func Decode(pemText string, now time.Time) (*model.CSRDecodeResult, error) {
	pemText = strings.TrimSpace(pemText)
	if pemText == "" {
		return nil, ErrCSRRequired
	}
	if len(pemText) > MaxInputLength {
		return nil, ErrTooLarge
	}

	block, err := singleRequest([]byte(pemText))
	if err != nil {
		return nil, err
	}
	req, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	out := &model.CSR{
		Subject:            subjectString(req),
		SubjectDetails:     certinfo.Name(req.Subject),
		CommonName:         req.Subject.CommonName,
		PublicKeyAlgorithm: req.PublicKeyAlgorithm.String(),
		KeySize:            certinfo.PublicKey(req.PublicKey, req.RawSubjectPublicKeyInfo).Size,
		KeyDetails:         keyDetails(req.PublicKey),
		SignatureAlgorithm: req.SignatureAlgorithm.String(),
		SignatureValid:     req.CheckSignature() == nil,
		Attributes:         attributes(req),
		Extensions:         extensions(req),
		Size:               len(block.Bytes),
		Base64Length:       len(base64.StdEncoding.EncodeToString(block.Bytes)),
		RawPEM:             string(pem.EncodeToMemory(block)),
		ParsingMethod:      "ASN.1 (PKCS#10)",
		Accuracy:           AccuracyHigh,
	}

	switch {
	case len(req.DNSNames) > 0:
		out.SubjectAltNames = req.DNSNames
		out.SANSource = SourceASN1
	case bytes.Contains(block.Bytes, sanOIDBytes):
		out.SubjectAltNames = ScanDomains(block.Bytes, req.Subject.CommonName)
		out.SANSource = SourceHeuristic
		out.Accuracy = AccuracyLimited
		out.ParsingMethod = "ASN.1 (PKCS#10) with byte-scan SAN fallback"
	default:
		out.SubjectAltNames = []string{}
		out.SANSource = SourceNone
	}

	return &model.CSRDecodeResult{
		CSRFound:       true,
		CSR:            out,
		DecodedAt:      now.UTC(),
		Recommendation: recommendation,
	}, nil
}

func singleRequest(data []byte) (*pem.Block, error) {
	var found *pem.Block
	count := 0
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest
		if !requestBlockTypes[block.Type] {
			continue
		}
		count++
		if found == nil {
			found = block
		}
	}
	switch count {
	case 0:
		return nil, ErrInvalidFormat
	case 1:
		return found, nil
	default:
		return nil, ErrMultipleCSRs
	}
}

// subjectString renders the subject in encoded order with short names.
func subjectString(req *x509.CertificateRequest) string {
	var parts []string
	for _, atv := range req.Subject.Names {
		name := atv.Type.String()
		for _, o := range subjectOIDs {
			if atv.Type.Equal(o.oid) {
				name = o.name
				break
			}
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, atv.Value))
	}
	if len(parts) == 0 {
		return "No subject found"
	}
	return strings.Join(parts, ", ")
}

func keyDetails(pub any) *model.CSRKeyDetails {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		mod := k.N.Text(16)
		if len(mod) > 32 {
			mod = mod[:32]
		}
		return &model.CSRKeyDetails{Modulus: mod + "...", Exponent: k.E}
	case *ecdsa.PublicKey:
		return &model.CSRKeyDetails{Curve: k.Curve.Params().Name}
	}
	return nil
}

func attributes(req *x509.CertificateRequest) []model.CSRAttribute {
	attrs := []model.CSRAttribute{}
	//nolint:staticcheck // Attributes is the only parsed view of non-extension attributes.
	for _, a := range req.Attributes {
		oid := a.Type.String()
		name, ok := attributeNames[oid]
		if !ok {
			name = oid
		}
		attr := model.CSRAttribute{OID: oid, Name: name}
		if oid == "1.2.840.113549.1.9.14" {
			attr.Value = fmt.Sprintf("%d extensions", len(req.Extensions))
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func extensions(req *x509.CertificateRequest) []model.Extension {
	exts := make([]model.Extension, 0, len(req.Extensions))
	for _, e := range req.Extensions {
		ext := model.Extension{
			Name:     certinfo.ExtensionName(e.Id),
			OID:      e.Id.String(),
			Critical: e.Critical,
		}
		if ext.OID == "2.5.29.17" {
			ext.Value = sanValue(req)
		}
		exts = append(exts, ext)
	}
	return exts
}

func sanValue(req *x509.CertificateRequest) string {
	var parts []string
	for _, n := range req.DNSNames {
		parts = append(parts, "DNS:"+n)
	}
	for _, ip := range req.IPAddresses {
		parts = append(parts, "IP Address:"+ip.String())
	}
	for _, e := range req.EmailAddresses {
		parts = append(parts, "email:"+e)
	}
	return strings.Join(parts, ", ")
}
