package model

import "time"

type MatchCertKeyRequest struct {
	Certificate string `json:"certificate"`
	PrivateKey  string `json:"privateKey"`
}

type KeyMatchCertificate struct {
	Subject             string    `json:"subject"`
	Issuer              string    `json:"issuer"`
	ValidFrom           time.Time `json:"validFrom"`
	ValidTo             time.Time `json:"validTo"`
	SerialNumber        string    `json:"serialNumber"`
	Fingerprint         string    `json:"fingerprint"`
	Fingerprint256      string    `json:"fingerprint256"`
	DaysUntilExpiration int       `json:"daysUntilExpiration"`
}

type PrivateKeyInfo struct {
	Type   string `json:"type"`
	Size   string `json:"size"`
	Format string `json:"format"`
}

type KeyCompatibility struct {
	KeyType   string `json:"keyType"`
	Supported bool   `json:"supported"`
	Algorithm string `json:"algorithm"`
}

type KeyMatchResult struct {
	Matches       bool                `json:"matches"`
	MatchDetails  string              `json:"matchDetails"`
	Certificate   KeyMatchCertificate `json:"certificate"`
	PrivateKey    PrivateKeyInfo      `json:"privateKey"`
	Compatibility KeyCompatibility    `json:"compatibility"`
}
