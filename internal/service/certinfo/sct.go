package certinfo

import (
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const (
	SCTSourceTLS      = "tls-extension"
	SCTSourceEmbedded = "embedded"
)

var (
	ErrSCTTooShort      = errors.New("sct too short")
	ErrSCTVersion       = errors.New("unsupported sct version")
	ErrSCTListTruncated = errors.New("sct list truncated")
	oidSCTList          = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}
)

// RFC 6962 SignedCertificateTimestamp layout:
// version(1) | log_id(32) | timestamp(8) | extensions<0..2^16-1> | signature
const (
	sctV1          = 0
	sctLogIDLen    = 32
	sctMinLen      = 1 + sctLogIDLen + 8 + 2
	lenPrefixBytes = 2
)

// ParseSCT decodes one serialized SCT. Only the version, log ID and
// timestamp are extracted; the signature is not checked.
func ParseSCT(data []byte, source string) (model.SignedCertificateTimestamp, error) {
	if len(data) < sctMinLen {
		return model.SignedCertificateTimestamp{}, fmt.Errorf("%w: %d bytes", ErrSCTTooShort, len(data))
	}
	if data[0] != sctV1 {
		return model.SignedCertificateTimestamp{}, fmt.Errorf("%w: %d", ErrSCTVersion, data[0])
	}

	logID := data[1 : 1+sctLogIDLen]
	ts := binary.BigEndian.Uint64(data[1+sctLogIDLen : 1+sctLogIDLen+8])

	return model.SignedCertificateTimestamp{
		Source:    source,
		Version:   int(data[0]) + 1,
		LogID:     base64.StdEncoding.EncodeToString(logID),
		Timestamp: time.UnixMilli(int64(ts)).UTC(),
	}, nil
}

// ParseSCTList decodes a TLS-encoded SignedCertificateTimestampList.
// Entries that fail to parse are left out of the result and reported in
// the returned error alongside the entries that did parse.
func ParseSCTList(data []byte, source string) ([]model.SignedCertificateTimestamp, error) {
	if len(data) < lenPrefixBytes {
		return nil, ErrSCTListTruncated
	}
	end := lenPrefixBytes + readUint16(data)
	if len(data) < end {
		return nil, ErrSCTListTruncated
	}

	var (
		scts []model.SignedCertificateTimestamp
		errs []error
	)
	for off := lenPrefixBytes; off < end; {
		if off+lenPrefixBytes > end {
			return scts, ErrSCTListTruncated
		}
		n := readUint16(data[off:])
		off += lenPrefixBytes
		if off+n > end {
			return scts, ErrSCTListTruncated
		}
		sct, err := ParseSCT(data[off:off+n], source)
		if err != nil {
			errs = append(errs, fmt.Errorf("sct %d: %w", len(scts)+len(errs)+1, err))
		} else {
			scts = append(scts, sct)
		}
		off += n
	}
	return scts, errors.Join(errs...)
}

// EmbeddedSCTs returns the SCTs carried in cert's SCT list extension. A
// malformed list yields the entries parsed before the fault and the error.
func EmbeddedSCTs(cert *x509.Certificate) ([]model.SignedCertificateTimestamp, error) {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidSCTList) {
			continue
		}
		var list []byte
		if _, err := asn1.Unmarshal(ext.Value, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSCTListTruncated, err)
		}
		return ParseSCTList(list, SCTSourceEmbedded)
	}
	return nil, nil
}

// readUint16 reads a 2-byte big-endian length prefix.
func readUint16(b []byte) int {
	return int(b[0])<<8 | int(b[1])
}
