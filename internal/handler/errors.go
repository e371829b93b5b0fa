package handler

import (
	"errors"
	"net/http"

	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/codec"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/csr"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/dnslookup"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/epoch"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/jwtinspect"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/keymatch"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/sslcheck"
)

// inputErrors are the failures caused by what the caller sent.
var inputErrors = []error{
	netprobe.ErrHostnameRequired,
	netprobe.ErrInvalidCharacters,
	netprobe.ErrInvalidIPv4,
	netprobe.ErrPrivateNetwork,
	netprobe.ErrHostnameTooLong,
	netprobe.ErrInvalidHostname,
	netprobe.ErrLocalhost,
	netprobe.ErrUnresolvable,
	netprobe.ErrInvalidPort,
	netprobe.ErrInvalidURL,
	sslcheck.ErrURLRequired,
	sslcheck.ErrURLTooLong,
	certinfo.ErrCertificateRequired,
	certinfo.ErrTooLarge,
	certinfo.ErrNoCertificates,
	certinfo.ErrNoCertificateInPKCS,
	csr.ErrCSRRequired,
	csr.ErrTooLarge,
	csr.ErrInvalidFormat,
	csr.ErrMultipleCSRs,
	csr.ErrParse,
	keymatch.ErrCertificateRequired,
	keymatch.ErrPrivateKeyRequired,
	keymatch.ErrInputTooLarge,
	keymatch.ErrInvalidCertificate,
	keymatch.ErrInvalidPrivateKey,
	keymatch.ErrEncryptedKey,
	jwtinspect.ErrTokenRequired,
	jwtinspect.ErrTokenTooLong,
	jwtinspect.ErrMalformed,
	jwtinspect.ErrInvalidCharacters,
	jwtinspect.ErrInvalidEncoding,
	jwtinspect.ErrInvalidClaimFormat,
	epoch.ErrTimestampRequired,
	epoch.ErrTooLong,
	epoch.ErrNotNumeric,
	epoch.ErrOutOfRange,
	epoch.ErrDateRequired,
	epoch.ErrTimeRequired,
	epoch.ErrInvalidDateTime,
	epoch.ErrUnknownTimezone,
	codec.ErrTextRequired,
	codec.ErrInputRequired,
	codec.ErrTooLarge,
	codec.ErrInvalidAlphabet,
	codec.ErrInvalidPadding,
	codec.ErrInvalidBase64,
	dnslookup.ErrDomainRequired,
	dnslookup.ErrDomainLength,
	dnslookup.ErrPrivateDomain,
	dnslookup.ErrInvalidDomain,
}

func isInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError writes err as 400 for bad input, as 500 with its code for a
// classified network failure, and as 500 under fallback otherwise.
func respondError(w http.ResponseWriter, err error, fallback string) {
	var netErr *netprobe.Error
	switch {
	case isInputError(err):
		writeError(w, http.StatusBadRequest, message(err))
	case errors.As(err, &netErr):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   netErr.Message,
			Details: netErr.Details,
			Code:    netErr.Code,
		})
	default:
		writeErrorDetails(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
