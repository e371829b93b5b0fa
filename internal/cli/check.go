package cli

import (
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/sslcheck"
)

func newCheckCommand(opts *options) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "check <host[:port]>",
		Short: "Check the certificate a TLS server presents",
		Example: `  ssl-toolbox check example.com
  ssl-toolbox check example.com:8443
  ssl-toolbox check https://example.com/login --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := toolLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			target, p := splitTarget(args[0], port)
			checker := sslcheck.NewChecker(netprobe.NewGuard(cfg.AllowPrivateTargets), cfg.TLSTimeout, log)
			res, err := checker.Check(cmd.Context(), target, p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, res)
			}
			return printCheck(out, res)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", sslcheck.DefaultPort, "Port to connect to when the target has none")
	addJSONFlag(cmd, opts)
	return cmd
}

// splitTarget takes the port from a bare host:port argument. URLs are passed
// through unchanged.
func splitTarget(arg string, port int) (string, int) {
	if strings.Contains(arg, "://") {
		return arg, port
	}
	host, ps, err := net.SplitHostPort(arg)
	if err != nil {
		return arg, port
	}
	p, err := strconv.Atoi(ps)
	if err != nil {
		return arg, port
	}
	return host, p
}

func printCheck(w io.Writer, res *model.SSLCheckResult) error {
	cert := res.Certificate
	match := yesNo(res.DomainMatch)
	if res.DomainMatchInfo.MatchedWith != "" {
		match += " (" + res.DomainMatchInfo.MatchedWith + ")"
	} else if res.DomainMatchInfo.Reason != "" {
		match += " (" + res.DomainMatchInfo.Reason + ")"
	}
	authorized := yesNo(res.Authorized)
	if res.AuthorizationError != "" {
		authorized += " (" + res.AuthorizationError + ")"
	}
	ocsp := "-"
	if res.OCSP != nil {
		ocsp = res.OCSP.Status
	}

	if err := printFields(w, [][2]string{
		{"Host", res.Hostname},
		{"IP address", res.IPAddress},
		{"Port", strconv.Itoa(res.Port)},
		{"Authorized", authorized},
		{"Domain match", match},
		{"Subject", cert.Subject.CN},
		{"Issuer", cert.Issuer.CN},
		{"Alt names", joinOrDash(cert.SubjectAltNames)},
		{"Valid from", formatDate(cert.ValidFrom)},
		{"Valid to", formatDate(cert.ValidTo)},
		{"Expires in", days(cert.DaysUntilExpiration)},
		{"Protocol", cert.Protocol},
		{"Cipher", cert.Cipher},
		{"OCSP", ocsp},
		{"SCTs", strconv.Itoa(len(res.SCTs))},
	}); err != nil {
		return err
	}

	rows := make([][]string, 0, len(res.CertificateChain))
	for _, link := range res.CertificateChain {
		rows = append(rows, []string{link.Level, link.Subject.CN, link.Issuer.CN, formatDate(link.ValidTo)})
	}
	return printTable(w, []string{"Level", "Subject", "Issuer", "Valid to"}, rows)
}
