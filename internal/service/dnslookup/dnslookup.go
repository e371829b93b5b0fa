// Package dnslookup queries the common record types for a domain in
// parallel and reports each type independently.
package dnslookup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultNameserver = "8.8.8.8:53"
	MaxDomainLength   = 255
	resolvConf        = "/etc/resolv.conf"
)

const (
	CodeNoData      = "ENODATA"
	CodeNotFound    = "ENOTFOUND"
	CodeServFail    = "ESERVFAIL"
	CodeRefused     = "EREFUSED"
	CodeTimeout     = "ETIMEOUT"
	CodeConnRefused = "ECONNREFUSED"
	CodeBadResp     = "EBADRESP"
)

var (
	ErrDomainRequired = errors.New("domain is required")
	ErrDomainLength   = errors.New("invalid domain length, domain must be between 1 and 255 characters")
	ErrPrivateDomain  = errors.New("private or reserved domain not allowed")
	ErrInvalidDomain  = errors.New("invalid domain name")
)

var privateDomain = regexp.MustCompile(`^(192\.168\.|10\.|172\.(1[6-9]|2[0-9]|3[01])\.)`)

// Normalize trims and lower-cases domain and rejects names that point
// at local or private infrastructure.
func Normalize(domain string) (string, error) {
	clean := strings.ToLower(strings.TrimSpace(domain))
	switch {
	case clean == "":
		return "", ErrDomainRequired
	case len(clean) > MaxDomainLength:
		return "", ErrDomainLength
	case clean == "localhost",
		clean == "127.0.0.1",
		strings.HasSuffix(clean, ".local"),
		strings.HasSuffix(clean, ".internal"),
		privateDomain.MatchString(clean):
		return "", ErrPrivateDomain
	}
	if _, ok := dns.IsDomainName(clean); !ok {
		return "", ErrInvalidDomain
	}
	return clean, nil
}

type Resolver struct {
	client     *dns.Client
	tcp        *dns.Client
	nameserver string
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewResolver returns a Resolver that sends queries to nameserver
// (host:port). An empty nameserver falls back to the first entry in
// /etc/resolv.conf, then to DefaultNameserver.
func NewResolver(nameserver string, timeout time.Duration, log logrus.FieldLogger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log = log.WithField("component", "dnslookup")
	if nameserver == "" {
		nameserver = systemNameserver(log)
	}
	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(nameserver, "53")
	}
	return &Resolver{
		client:     &dns.Client{Net: "udp", Timeout: timeout},
		tcp:        &dns.Client{Net: "tcp", Timeout: timeout},
		nameserver: nameserver,
		log:        log,
		now:        time.Now,
	}
}

func systemNameserver(log logrus.FieldLogger) string {
	cfg, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(cfg.Servers) == 0 {
		log.WithError(err).Warnf("no system nameserver, using %s", DefaultNameserver)
		return DefaultNameserver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

// Lookup queries A, AAAA, MX, TXT, CNAME, NS and SOA records for domain.
// A failing record type fills its own slot with an error; only invalid
// input fails the lookup as a whole.
func (r *Resolver) Lookup(ctx context.Context, domain string) (*model.DNSLookupResult, error) {
	clean, err := Normalize(domain)
	if err != nil {
		return nil, err
	}

	var recs model.DNSRecords
	var g errgroup.Group
	g.Go(func() error {
		recs.A = collect(r.query(ctx, clean, dns.TypeA), func(rr *dns.A) string { return rr.A.String() })
		return nil
	})
	g.Go(func() error {
		recs.AAAA = collect(r.query(ctx, clean, dns.TypeAAAA), func(rr *dns.AAAA) string { return rr.AAAA.String() })
		return nil
	})
	g.Go(func() error {
		recs.MX = collect(r.query(ctx, clean, dns.TypeMX), func(rr *dns.MX) model.MXRecord {
			return model.MXRecord{Priority: rr.Preference, Exchange: trimDot(rr.Mx)}
		})
		return nil
	})
	g.Go(func() error {
		recs.TXT = collect(r.query(ctx, clean, dns.TypeTXT), func(rr *dns.TXT) string { return strings.Join(rr.Txt, "") })
		return nil
	})
	g.Go(func() error {
		recs.CNAME = collect(r.query(ctx, clean, dns.TypeCNAME), func(rr *dns.CNAME) string { return trimDot(rr.Target) })
		return nil
	})
	g.Go(func() error {
		recs.NS = collect(r.query(ctx, clean, dns.TypeNS), func(rr *dns.NS) string { return trimDot(rr.Ns) })
		return nil
	})
	g.Go(func() error {
		soa := collect(r.query(ctx, clean, dns.TypeSOA), func(rr *dns.SOA) *model.SOARecord {
			return &model.SOARecord{
				NSName:     trimDot(rr.Ns),
				Hostmaster: trimDot(rr.Mbox),
				Serial:     rr.Serial,
				Refresh:    rr.Refresh,
				Retry:      rr.Retry,
				Expire:     rr.Expire,
				MinTTL:     rr.Minttl,
			}
		})
		recs.SOA = model.RecordSlot[*model.SOARecord]{Err: soa.Err}
		if soa.OK() {
			recs.SOA.Records = soa.Records[0]
		}
		return nil
	})
	_ = g.Wait()

	return &model.DNSLookupResult{
		Success:   true,
		Domain:    clean,
		Results:   recs,
		Summary:   summarize(recs),
		QueriedAt: r.now().UTC(),
	}, nil
}

type answer struct {
	rrs []dns.RR
	err *model.RecordError
}

func (r *Resolver) query(ctx context.Context, domain string, qtype uint16) answer {
	name := dns.TypeToString[qtype]
	fail := func(code string) answer {
		r.log.WithFields(logrus.Fields{"domain": domain, "type": name, "code": code}).Debug("dns query failed")
		return answer{err: &model.RecordError{Code: code, Message: fmt.Sprintf("query%s %s %s", queryName(name), code, domain)}}
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), qtype)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.nameserver)
	if err == nil && in.Truncated {
		r.log.WithFields(logrus.Fields{"domain": domain, "type": name}).Debug("truncated reply, retrying over tcp")
		in, _, err = r.tcp.ExchangeContext(ctx, m, r.nameserver)
	}
	if err != nil {
		return fail(exchangeCode(err))
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return fail(CodeNotFound)
	case dns.RcodeServerFailure:
		return fail(CodeServFail)
	case dns.RcodeRefused:
		return fail(CodeRefused)
	default:
		return fail("E" + strings.ToUpper(dns.RcodeToString[in.Rcode]))
	}

	rrs := make([]dns.RR, 0, len(in.Answer))
	for _, rr := range in.Answer {
		if rr.Header().Rrtype == qtype {
			rrs = append(rrs, rr)
		}
	}
	if len(rrs) == 0 {
		return fail(CodeNoData)
	}
	return answer{rrs: rrs}
}

// exchangeCode maps a transport or decoding failure to an error code.
func exchangeCode(err error) string {
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return CodeTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.As(err, &opErr):
		return CodeConnRefused
	default:
		return CodeBadResp
	}
}

// collect converts the records of one type, or carries the query error.
func collect[R dns.RR, T any](a answer, conv func(R) T) model.RecordSlot[[]T] {
	if a.err != nil {
		return model.RecordSlot[[]T]{Err: a.err}
	}
	out := make([]T, 0, len(a.rrs))
	for _, rr := range a.rrs {
		if v, ok := rr.(R); ok {
			out = append(out, conv(v))
		}
	}
	return model.RecordSlot[[]T]{Records: out}
}

func summarize(recs model.DNSRecords) model.DNSSummary {
	counts := []struct {
		typ string
		n   int
	}{
		{"A", len(recs.A.Records)},
		{"AAAA", len(recs.AAAA.Records)},
		{"MX", len(recs.MX.Records)},
		{"TXT", len(recs.TXT.Records)},
		{"NS", len(recs.NS.Records)},
	}
	s := model.DNSSummary{RecordTypes: []string{}}
	for _, c := range counts {
		s.TotalRecords += c.n
		if c.n > 0 {
			s.RecordTypes = append(s.RecordTypes, c.typ)
		}
	}
	s.HasIPv4 = len(recs.A.Records) > 0
	s.HasIPv6 = len(recs.AAAA.Records) > 0
	s.HasMail = len(recs.MX.Records) > 0
	if s.HasIPv4 {
		s.IPAddress = recs.A.Records[0]
	}
	return s
}

// queryName renders a record type the way resolver error messages do,
// e.g. AAAA as "Aaaa".
func queryName(typ string) string {
	if len(typ) <= 1 {
		return typ
	}
	return typ[:1] + strings.ToLower(typ[1:])
}

func trimDot(name string) string {
	return strings.TrimSuffix(name, ".")
}
