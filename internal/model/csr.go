package model

import "time"

type DecodeCSRRequest struct {
	CSR string `json:"csr"`
}

type CSRKeyDetails struct {
	Modulus  string `json:"modulus,omitempty"`
	Exponent int    `json:"exponent,omitempty"`
	Curve    string `json:"curve,omitempty"`
}

type CSRAttribute struct {
	OID   string `json:"oid"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// CSR is the decoded form of a PKCS#10 certificate signing request.
// SANSource records how SubjectAltNames were obtained and Accuracy
// qualifies them: "High" for structured parsing, "Limited" for the
// byte-scan fallback.
type CSR struct {
	Subject            string            `json:"subject"`
	SubjectDetails     DistinguishedName `json:"subjectDetails"`
	CommonName         string            `json:"commonName,omitempty"`
	SubjectAltNames    []string          `json:"subjectAltNames"`
	SANSource          string            `json:"sanSource"`
	PublicKeyAlgorithm string            `json:"publicKeyAlgorithm"`
	KeySize            string            `json:"keySize"`
	KeyDetails         *CSRKeyDetails    `json:"keyDetails,omitempty"`
	SignatureAlgorithm string            `json:"signatureAlgorithm"`
	SignatureValid     bool              `json:"signatureValid"`
	Attributes         []CSRAttribute    `json:"attributes"`
	Extensions         []Extension       `json:"extensions"`
	Size               int               `json:"size"`
	Base64Length       int               `json:"base64Length"`
	RawPEM             string            `json:"rawPEM"`
	ParsingMethod      string            `json:"parsingMethod"`
	Accuracy           string            `json:"accuracy"`
}

type CSRDecodeResult struct {
	CSRFound       bool      `json:"csrFound"`
	CSR            *CSR      `json:"csr"`
	DecodedAt      time.Time `json:"decodedAt"`
	Recommendation string    `json:"recommendation"`
}
