package model

import "time"

// DistinguishedName holds the commonly displayed RDN components of an
// X.509 subject or issuer. Absent components are omitted.
type DistinguishedName struct {
	CN           string `json:"CN,omitempty"`
	O            string `json:"O,omitempty"`
	OU           string `json:"OU,omitempty"`
	C            string `json:"C,omitempty"`
	ST           string `json:"ST,omitempty"`
	L            string `json:"L,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

type PublicKeyInfo struct {
	Algorithm string `json:"algorithm"`
	Size      string `json:"size"`
	Curve     string `json:"curve,omitempty"`
}

type Extension struct {
	Name     string `json:"name"`
	OID      string `json:"oid"`
	Critical bool   `json:"critical"`
	Value    string `json:"value,omitempty"`
}

// SignedCertificateTimestamp is a single SCT from a TLS extension or the
// certificate's embedded SCT list.
type SignedCertificateTimestamp struct {
	Source    string    `json:"source"`
	Version   int       `json:"version"`
	LogID     string    `json:"logId"`
	Timestamp time.Time `json:"timestamp"`
}

type Certificate struct {
	Subject             DistinguishedName            `json:"subject"`
	Issuer              DistinguishedName            `json:"issuer"`
	SubjectAltNames     []string                     `json:"subjectAltNames"`
	ValidFrom           time.Time                    `json:"validFrom"`
	ValidTo             time.Time                    `json:"validTo"`
	DaysUntilExpiration int                          `json:"daysUntilExpiration"`
	Expired             bool                         `json:"expired"`
	SerialNumber        string                       `json:"serialNumber"`
	Fingerprint         string                       `json:"fingerprint"`
	Fingerprint256      string                       `json:"fingerprint256"`
	Version             int                          `json:"version"`
	SignatureAlgorithm  string                       `json:"signatureAlgorithm"`
	PublicKeyAlgorithm  string                       `json:"publicKeyAlgorithm"`
	PublicKeyInfo       PublicKeyInfo                `json:"publicKeyInfo"`
	IsCA                bool                         `json:"isCA"`
	KeyUsage            []string                     `json:"keyUsage,omitempty"`
	ExtKeyUsage         []string                     `json:"extKeyUsage,omitempty"`
	Extensions          []Extension                  `json:"extensions"`
	EmbeddedSCTs        []SignedCertificateTimestamp `json:"embeddedScts,omitempty"`
	SCTError            string                       `json:"sctError,omitempty"`
}

// DecodedCertificate is one entry of a decoded PEM bundle. Exactly one of
// Certificate or Error is set.
type DecodedCertificate struct {
	Position          int    `json:"position"`
	TotalCertificates int    `json:"totalCertificates"`
	CertLevel         string `json:"certLevel"`
	Error             string `json:"error,omitempty"`
	*Certificate
}

type DecodedBundle struct {
	CertificatesFound int                  `json:"certificatesFound"`
	Certificates      []DecodedCertificate `json:"certificates"`
	ChainValid        bool                 `json:"chainValid"`
	IssuerLinksValid  bool                 `json:"issuerLinksValid"`
	DecodedAt         time.Time            `json:"decodedAt"`
}

type ChainLink struct {
	Subject        DistinguishedName `json:"subject"`
	Issuer         DistinguishedName `json:"issuer"`
	ValidFrom      time.Time         `json:"validFrom"`
	ValidTo        time.Time         `json:"validTo"`
	SerialNumber   string            `json:"serialNumber"`
	Fingerprint    string            `json:"fingerprint"`
	Fingerprint256 string            `json:"fingerprint256"`
	Level          string            `json:"level"`
}

// DomainMatchResult reports whether a hostname is covered by a certificate.
// MatchedWith is set when Matches is true, Reason otherwise.
type DomainMatchResult struct {
	Matches     bool   `json:"matches"`
	MatchedWith string `json:"matchedWith,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type DecodeCertificateRequest struct {
	Certificate string `json:"certificate"`
}
