package model

import "time"

type CheckSSLRequest struct {
	URL  string `json:"url"`
	Port *int   `json:"port,omitempty"`
}

type SSLCertificate struct {
	Certificate
	Protocol string `json:"protocol"`
	Cipher   string `json:"cipher"`
}

type OCSPStatus struct {
	Status     string     `json:"status"`
	ThisUpdate time.Time  `json:"thisUpdate"`
	NextUpdate time.Time  `json:"nextUpdate,omitzero"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type SSLCheckResult struct {
	Hostname           string                       `json:"hostname"`
	IPAddress          string                       `json:"ipAddress"`
	Port               int                          `json:"port"`
	Valid              bool                         `json:"valid"`
	Authorized         bool                         `json:"authorized"`
	AuthorizationError string                       `json:"authorizationError,omitempty"`
	DomainMatch        bool                         `json:"domainMatch"`
	DomainMatchInfo    DomainMatchResult            `json:"domainMatchInfo"`
	Certificate        SSLCertificate               `json:"certificate"`
	CertificateChain   []ChainLink                  `json:"certificateChain"`
	ChainLength        int                          `json:"chainLength"`
	OCSP               *OCSPStatus                  `json:"ocsp,omitempty"`
	SCTs               []SignedCertificateTimestamp `json:"scts,omitempty"`
	SCTErrors          []string                     `json:"sctErrors,omitempty"`
	CheckedAt          time.Time                    `json:"checkedAt"`
}

type ScanPortRequest struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type PortScanResult struct {
	Host         string `json:"host"`
	IPAddress    string `json:"ipAddress"`
	Port         int    `json:"port"`
	IsOpen       bool   `json:"isOpen"`
	ServiceName  string `json:"serviceName"`
	ResponseTime *int64 `json:"responseTime,omitempty"`
	ErrorType    string `json:"errorType,omitempty"`
}

type DNSLookupRequest struct {
	Domain string `json:"domain"`
}

type MXRecord struct {
	Priority uint16 `json:"priority"`
	Exchange string `json:"exchange"`
}

type SOARecord struct {
	NSName     string `json:"nsname"`
	Hostmaster string `json:"hostmaster"`
	Serial     uint32 `json:"serial"`
	Refresh    uint32 `json:"refresh"`
	Retry      uint32 `json:"retry"`
	Expire     uint32 `json:"expire"`
	MinTTL     uint32 `json:"minttl"`
}

// RecordError is the per-record-type failure placed in a DNS result slot.
type RecordError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// RecordSlot holds either the records of one type or the error that
// prevented fetching them. It marshals to whichever is set.
type RecordSlot[T any] struct {
	Records T
	Err     *RecordError
}

type DNSRecords struct {
	A     RecordSlot[[]string]   `json:"A"`
	AAAA  RecordSlot[[]string]   `json:"AAAA"`
	MX    RecordSlot[[]MXRecord] `json:"MX"`
	TXT   RecordSlot[[]string]   `json:"TXT"`
	CNAME RecordSlot[[]string]   `json:"CNAME"`
	NS    RecordSlot[[]string]   `json:"NS"`
	SOA   RecordSlot[*SOARecord] `json:"SOA"`
}

type DNSSummary struct {
	TotalRecords int      `json:"totalRecords"`
	RecordTypes  []string `json:"recordTypes"`
	HasIPv4      bool     `json:"hasIPv4"`
	HasIPv6      bool     `json:"hasIPv6"`
	HasMail      bool     `json:"hasMail"`
	IPAddress    string   `json:"ipAddress,omitempty"`
}

type DNSLookupResult struct {
	Success   bool       `json:"success"`
	Domain    string     `json:"domain"`
	Results   DNSRecords `json:"results"`
	Summary   DNSSummary `json:"summary"`
	QueriedAt time.Time  `json:"queriedAt"`
}
