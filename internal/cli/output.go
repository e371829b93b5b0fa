package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02 15:04:05 MST"

func addJSONFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().BoolVarP(&opts.asJSON, "json", "j", false, "Print the result as JSON instead of a table")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable renders rows under header.
func printTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// printFields renders label/value pairs as a two-column table.
func printFields(w io.Writer, fields [][2]string) error {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f[0], f[1]})
	}
	return printTable(w, []string{"Field", "Value"}, rows)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func joinOrDash(v []string) string {
	if len(v) == 0 {
		return "-"
	}
	return strings.Join(v, ", ")
}

func days(n int) string {
	return fmt.Sprintf("%d days", n)
}
