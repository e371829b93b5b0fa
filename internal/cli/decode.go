package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/csr"
)

const csrMarker = "CERTIFICATE REQUEST"

func newDecodeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a PEM certificate bundle or CSR",
		Long:  "Decode a PEM certificate bundle or certificate signing request. Use - to read standard input.",
		Example: `  ssl-toolbox decode fullchain.pem
  ssl-toolbox decode request.csr --json
  cat cert.pem | ssl-toolbox decode -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			now := time.Now()
			if strings.Contains(data, csrMarker) {
				res, err := csr.Decode(data, now)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(out, res)
				}
				return printCSR(out, res.CSR)
			}

			res, err := certinfo.DecodeBundle(data, now)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(out, res)
			}
			return printBundle(out, res)
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func printBundle(w io.Writer, res *model.DecodedBundle) error {
	rows := make([][]string, 0, len(res.Certificates))
	for _, c := range res.Certificates {
		pos := strconv.Itoa(c.Position)
		if c.Certificate == nil {
			rows = append(rows, []string{pos, c.CertLevel, "error: " + c.Error, "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			pos,
			c.CertLevel,
			c.Subject.CN,
			c.Issuer.CN,
			formatDate(c.ValidTo),
			days(c.DaysUntilExpiration),
		})
	}
	if err := printTable(w, []string{"#", "Level", "Subject", "Issuer", "Valid to", "Expires in"}, rows); err != nil {
		return err
	}
	return printFields(w, [][2]string{
		{"Certificates", strconv.Itoa(res.CertificatesFound)},
		{"Issuer links valid", yesNo(res.IssuerLinksValid)},
	})
}

func printCSR(w io.Writer, c *model.CSR) error {
	return printFields(w, [][2]string{
		{"Subject", c.Subject},
		{"Common name", c.CommonName},
		{"Alt names", joinOrDash(c.SubjectAltNames)},
		{"SAN source", c.SANSource},
		{"Key", c.PublicKeyAlgorithm + " " + c.KeySize},
		{"Signature algorithm", c.SignatureAlgorithm},
		{"Signature valid", yesNo(c.SignatureValid)},
	})
}
