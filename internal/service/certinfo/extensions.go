package certinfo

import (
	"crypto/x509"
	"encoding/asn1"
	"strings"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

var extensionNames = map[string]string{
	"2.5.29.14":               "Subject Key Identifier",
	"2.5.29.15":               "Key Usage",
	"2.5.29.17":               "Subject Alternative Name",
	"2.5.29.19":               "Basic Constraints",
	"2.5.29.30":               "Name Constraints",
	"2.5.29.31":               "CRL Distribution Points",
	"2.5.29.32":               "Certificate Policies",
	"2.5.29.35":               "Authority Key Identifier",
	"2.5.29.37":               "Extended Key Usage",
	"1.3.6.1.5.5.7.1.1":       "Authority Information Access",
	"1.3.6.1.5.5.7.1.24":      "TLS Feature",
	"1.3.6.1.4.1.11129.2.4.2": "Signed Certificate Timestamps",
	"1.3.6.1.4.1.11129.2.4.3": "Precertificate Poison",
}

// ExtensionName returns the display name of a certificate extension OID,
// or the dotted OID itself when unknown.
func ExtensionName(oid asn1.ObjectIdentifier) string {
	if name, ok := extensionNames[oid.String()]; ok {
		return name
	}
	return oid.String()
}

var keyUsageNames = []struct {
	bit  x509.KeyUsage
	name string
}{
	{x509.KeyUsageDigitalSignature, "Digital Signature"},
	{x509.KeyUsageContentCommitment, "Content Commitment"},
	{x509.KeyUsageKeyEncipherment, "Key Encipherment"},
	{x509.KeyUsageDataEncipherment, "Data Encipherment"},
	{x509.KeyUsageKeyAgreement, "Key Agreement"},
	{x509.KeyUsageCertSign, "Certificate Sign"},
	{x509.KeyUsageCRLSign, "CRL Sign"},
	{x509.KeyUsageEncipherOnly, "Encipher Only"},
	{x509.KeyUsageDecipherOnly, "Decipher Only"},
}

func KeyUsageNames(ku x509.KeyUsage) []string {
	var names []string
	for _, u := range keyUsageNames {
		if ku&u.bit != 0 {
			names = append(names, u.name)
		}
	}
	return names
}

var extKeyUsageNames = map[x509.ExtKeyUsage]string{
	x509.ExtKeyUsageAny:             "Any",
	x509.ExtKeyUsageServerAuth:      "TLS Web Server Authentication",
	x509.ExtKeyUsageClientAuth:      "TLS Web Client Authentication",
	x509.ExtKeyUsageCodeSigning:     "Code Signing",
	x509.ExtKeyUsageEmailProtection: "E-mail Protection",
	x509.ExtKeyUsageTimeStamping:    "Time Stamping",
	x509.ExtKeyUsageOCSPSigning:     "OCSP Signing",
}

func ExtKeyUsageNames(eku []x509.ExtKeyUsage) []string {
	var names []string
	for _, u := range eku {
		if name, ok := extKeyUsageNames[u]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Extensions summarises the extensions present on cert. Key Usage and
// Subject Alternative Name carry a rendered value.
func Extensions(cert *x509.Certificate) []model.Extension {
	exts := make([]model.Extension, 0, len(cert.Extensions))
	for _, e := range cert.Extensions {
		ext := model.Extension{
			Name:     ExtensionName(e.Id),
			OID:      e.Id.String(),
			Critical: e.Critical,
		}
		switch ext.OID {
		case "2.5.29.15":
			ext.Value = strings.Join(KeyUsageNames(cert.KeyUsage), ", ")
		case "2.5.29.17":
			ext.Value = sanString(cert)
		case "2.5.29.37":
			ext.Value = strings.Join(ExtKeyUsageNames(cert.ExtKeyUsage), ", ")
		}
		exts = append(exts, ext)
	}
	return exts
}

func sanString(cert *x509.Certificate) string {
	var parts []string
	for _, n := range cert.DNSNames {
		parts = append(parts, "DNS:"+n)
	}
	for _, ip := range cert.IPAddresses {
		parts = append(parts, "IP Address:"+ip.String())
	}
	for _, e := range cert.EmailAddresses {
		parts = append(parts, "email:"+e)
	}
	for _, u := range cert.URIs {
		parts = append(parts, "URI:"+u.String())
	}
	return strings.Join(parts, ", ")
}
