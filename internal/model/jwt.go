package model

type DecodeJWTRequest struct {
	Token string `json:"token"`
}

type JWTHeader struct {
	Algorithm string         `json:"alg"`
	Type      string         `json:"typ,omitempty"`
	KeyID     string         `json:"kid,omitempty"`
	Raw       map[string]any `json:"raw"`
}

// JWTTimeClaim is a NumericDate claim with its human-readable rendering.
type JWTTimeClaim struct {
	Value     int64  `json:"value"`
	Formatted string `json:"formatted"`
}

type JWTClaim struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type JWTPayload struct {
	Issuer       string         `json:"iss,omitempty"`
	Subject      string         `json:"sub,omitempty"`
	Audience     []string       `json:"aud,omitempty"`
	ExpiresAt    *JWTTimeClaim  `json:"exp,omitempty"`
	IssuedAt     *JWTTimeClaim  `json:"iat,omitempty"`
	NotBefore    *JWTTimeClaim  `json:"nbf,omitempty"`
	ID           string         `json:"jti,omitempty"`
	CustomClaims []JWTClaim     `json:"customClaims"`
	Raw          map[string]any `json:"raw"`
}

// JWTSignature describes the signature segment. It is never verified.
type JWTSignature struct {
	Algorithm string `json:"algorithm"`
	Length    int    `json:"length"`
	Base64    string `json:"base64"`
}

type JWTSecurity struct {
	Algorithm       string   `json:"algorithm"`
	Assessment      string   `json:"assessment"`
	Secure          bool     `json:"secure"`
	Expiration      string   `json:"expiration"`
	Recommendations []string `json:"recommendations"`
}

type JWTAnalysis struct {
	Header    JWTHeader    `json:"header"`
	Payload   JWTPayload   `json:"payload"`
	Signature JWTSignature `json:"signature"`
	Security  JWTSecurity  `json:"security"`
}
