// Package jwtinspect decodes JSON Web Tokens without verifying them and
// rates the algorithm and lifetime they declare.
package jwtinspect

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const MaxTokenLength = 8192

var (
	ErrTokenRequired      = errors.New("jwt token is required")
	ErrTokenTooLong       = errors.New("jwt token is too long, maximum length is 8192 characters")
	ErrMalformed          = errors.New("jwt token must have exactly 3 parts separated by dots (header.payload.signature)")
	ErrInvalidCharacters  = errors.New("jwt token contains invalid characters, only base64url characters (A-Z, a-z, 0-9, -, _) are allowed")
	ErrInvalidEncoding    = errors.New("invalid jwt encoding")
	ErrInvalidClaimFormat = errors.New("invalid registered claim")
)

var (
	segmentRe   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	signatureRe = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)
)

var registeredClaims = map[string]bool{
	"iss": true, "sub": true, "aud": true, "exp": true, "iat": true, "nbf": true, "jti": true,
}

// Inspect decodes token and assesses it relative to now. The signature
// is decoded only to report its length.
func Inspect(token string, now time.Time) (*model.JWTAnalysis, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	if len(token) > MaxTokenLength {
		return nil, ErrTokenTooLong
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	if !segmentRe.MatchString(parts[0]) || !segmentRe.MatchString(parts[1]) || !signatureRe.MatchString(parts[2]) {
		return nil, ErrInvalidCharacters
	}

	parser := jwt.NewParser(jwt.WithJSONNumber())
	claims := jwt.MapClaims{}
	parsed, _, err := parser.ParseUnverified(token, claims)
	// An unregistered alg still yields a decoded header and payload.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrInvalidEncoding, err)
	}

	header := headerOf(parsed.Header)
	payload, err := payloadOf(claims)
	if err != nil {
		return nil, err
	}

	return &model.JWTAnalysis{
		Header:  header,
		Payload: *payload,
		Signature: model.JWTSignature{
			Algorithm: header.Algorithm,
			Length:    len(sig),
			Base64:    parts[2],
		},
		Security: assess(header.Algorithm, payload, now),
	}, nil
}

func headerOf(raw map[string]any) model.JWTHeader {
	h := model.JWTHeader{Algorithm: "Unknown", Raw: raw}
	if alg, ok := raw["alg"].(string); ok && alg != "" {
		h.Algorithm = alg
	}
	h.Type, _ = raw["typ"].(string)
	h.KeyID, _ = raw["kid"].(string)
	return h
}

func payloadOf(claims jwt.MapClaims) (*model.JWTPayload, error) {
	p := &model.JWTPayload{Raw: claims, CustomClaims: []model.JWTClaim{}}

	var err error
	if p.Issuer, err = claims.GetIssuer(); err != nil {
		return nil, claimError(err)
	}
	if p.Subject, err = claims.GetSubject(); err != nil {
		return nil, claimError(err)
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return nil, claimError(err)
	}
	p.Audience = aud
	if jti, ok := claims["jti"]; ok {
		p.ID = fmt.Sprint(jti)
	}

	for _, c := range []struct {
		get func() (*jwt.NumericDate, error)
		dst **model.JWTTimeClaim
	}{
		{claims.GetExpirationTime, &p.ExpiresAt},
		{claims.GetIssuedAt, &p.IssuedAt},
		{claims.GetNotBefore, &p.NotBefore},
	} {
		d, err := c.get()
		if err != nil {
			return nil, claimError(err)
		}
		if d != nil {
			*c.dst = &model.JWTTimeClaim{Value: d.Unix(), Formatted: d.UTC().Format(time.RFC1123)}
		}
	}

	keys := make([]string, 0, len(claims))
	for k := range claims {
		if !registeredClaims[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.CustomClaims = append(p.CustomClaims, model.JWTClaim{Key: k, Value: claims[k]})
	}
	return p, nil
}

func claimError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidClaimFormat, err)
}

func assess(alg string, p *model.JWTPayload, now time.Time) model.JWTSecurity {
	s := model.JWTSecurity{Algorithm: alg, Secure: true}

	switch {
	case alg == "none":
		s.Secure = false
		s.Assessment = "Insecure (No signature)"
		s.Recommendations = append(s.Recommendations, "'none' algorithm means no signature verification - highly insecure")
	case alg == "HS256":
		s.Assessment = "Secure (HMAC SHA-256)"
		s.Recommendations = append(s.Recommendations, "Ensure secret key is strong and properly managed")
	case strings.HasPrefix(alg, "RS"):
		s.Assessment = "Secure (RSA with SHA)"
		s.Recommendations = append(s.Recommendations, "RSA signature provides good security")
	case strings.HasPrefix(alg, "ES"):
		s.Assessment = "Secure (ECDSA)"
		s.Recommendations = append(s.Recommendations, "ECDSA provides excellent security with smaller keys")
	default:
		s.Secure = false
		s.Assessment = "Unknown algorithm"
		s.Recommendations = append(s.Recommendations, "Verify that the algorithm is supported and secure")
	}

	switch {
	case p.ExpiresAt == nil:
		s.Expiration = "No expiration set"
		s.Recommendations = append(s.Recommendations, "Consider setting an expiration time (exp) for better security")
	case now.Unix() > p.ExpiresAt.Value:
		s.Expiration = "EXPIRED"
		s.Recommendations = append(s.Recommendations, "Token has expired and should not be accepted")
	default:
		left := time.Unix(p.ExpiresAt.Value, 0).Sub(now)
		if left < 24*time.Hour {
			s.Expiration = "Expires soon (less than 1 day)"
			s.Recommendations = append(s.Recommendations, "Token expires soon - consider refreshing")
		} else {
			s.Expiration = fmt.Sprintf("Valid (expires in %d days)", int(left/(24*time.Hour)))
		}
	}

	if p.Issuer == "" {
		s.Recommendations = append(s.Recommendations, "Consider adding issuer (iss) claim for better token validation")
	}
	if len(p.Audience) == 0 {
		s.Recommendations = append(s.Recommendations, "Consider adding audience (aud) claim to specify intended recipients")
	}
	return s
}
