// Package codec converts text to and from Base64.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const (
	MaxEncodeInput = 50 * 1024
	MaxDecodeInput = 75 * 1024
)

const (
	ModeStandard = "Standard Base64"
	ModeURLSafe  = "URL-Safe Base64"
)

var (
	ErrTextRequired    = errors.New("text to encode is required")
	ErrInputRequired   = errors.New("base64 string is required")
	ErrTooLarge        = errors.New("input is too large")
	ErrInvalidAlphabet = errors.New("contains invalid base64 characters")
	ErrInvalidPadding  = errors.New("invalid base64 padding")
	ErrInvalidBase64   = errors.New("invalid base64 format")
)

var (
	stdAlphabet = regexp.MustCompile(`^[A-Za-z0-9+/]*$`)
	urlAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)
)

// Encode returns the Base64 form of text. URL-safe output is unpadded.
func Encode(text string, urlSafe bool) (*model.Base64Result, error) {
	if text == "" {
		return nil, ErrTextRequired
	}
	if len(text) > MaxEncodeInput {
		return nil, fmt.Errorf("%w: maximum allowed size is %d KB", ErrTooLarge, MaxEncodeInput/1024)
	}

	enc, mode := base64.StdEncoding, ModeStandard
	if urlSafe {
		enc, mode = base64.RawURLEncoding, ModeURLSafe
	}
	out := enc.EncodeToString([]byte(text))
	return &model.Base64Result{
		Output:      out,
		Mode:        mode,
		InputBytes:  len(text),
		OutputBytes: len(out),
		ValidUTF8:   utf8.ValidString(text),
	}, nil
}

// Decode reverses Encode. Whitespace anywhere in input is ignored and
// padding is optional. Bytes that are not valid UTF-8 are rendered as
// Latin-1.
func Decode(input string, urlSafe bool) (*model.Base64Result, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	if clean == "" {
		return nil, ErrInputRequired
	}
	if len(clean) > MaxDecodeInput {
		return nil, fmt.Errorf("%w: maximum allowed size is %d KB", ErrTooLarge, MaxDecodeInput/1024)
	}

	body := strings.TrimRight(clean, "=")
	if len(clean)-len(body) > 2 {
		return nil, ErrInvalidPadding
	}
	if strings.Contains(body, "=") {
		return nil, fmt.Errorf("%w: padding must be at the end", ErrInvalidPadding)
	}

	enc, alphabet, mode := base64.RawStdEncoding, stdAlphabet, ModeStandard
	if urlSafe {
		enc, alphabet, mode = base64.RawURLEncoding, urlAlphabet, ModeURLSafe
	}
	if !alphabet.MatchString(body) {
		return nil, ErrInvalidAlphabet
	}

	raw, err := enc.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}

	res := &model.Base64Result{
		Mode:        mode,
		InputBytes:  len(input),
		OutputBytes: len(raw),
		ValidUTF8:   utf8.Valid(raw),
	}
	if res.ValidUTF8 {
		res.Output = string(raw)
		return res, nil
	}
	latin1, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	res.Output = string(latin1)
	return res, nil
}
