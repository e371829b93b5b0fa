package csr

import (
	"regexp"

	"github.com/samber/lo"
)

const maxScannedNames = 10

var (
	// DER encoding of the id-ce-subjectAltName OID, 2.5.29.17.
	sanOIDBytes = []byte{0x55, 0x1d, 0x11}

	domainCandidate = regexp.MustCompile(`(?:\*\.)?[a-zA-Z0-9][a-zA-Z0-9.-]{1,60}\.[a-zA-Z]{2,6}`)
	domainShape     = regexp.MustCompile(`^(?:\*\.)?[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,6}$`)
)

// ScanDomains extracts domain-shaped strings from raw DER. Results are
// de-duplicated in order of appearance, exclude commonName and are capped
// at ten entries. The scan has no notion of ASN.1 structure, so results
// are approximate.
func ScanDomains(der []byte, commonName string) []string {
	found := lo.Map(domainCandidate.FindAll(der, -1), func(b []byte, _ int) string {
		return string(b)
	})

	names := lo.Filter(lo.Uniq(found), func(d string, _ int) bool {
		return domainShape.MatchString(d) && len(d) > 4 && len(d) < 64 && d != commonName
	})
	if len(names) > maxScannedNames {
		names = names[:maxScannedNames]
	}
	return names
}
