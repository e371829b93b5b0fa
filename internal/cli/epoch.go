package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/andres10976/ssl-toolbox/backend/internal/service/epoch"
)

func newEpochCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epoch [timestamp]",
		Short: "Convert a Unix timestamp to human-readable dates",
		Long:  "Convert a Unix timestamp in seconds, milliseconds, microseconds or nanoseconds. Without an argument the current time is shown.",
		Example: `  ssl-toolbox epoch 1700000000
  ssl-toolbox epoch 1700000000123 --json
  ssl-toolbox epoch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				now := epoch.Now(time.Now())
				if opts.asJSON {
					return printJSON(out, now)
				}
				return printFields(out, [][2]string{
					{"Unix", strconv.FormatInt(now.Unix, 10)},
					{"Milliseconds", strconv.FormatInt(now.JS, 10)},
					{"ISO 8601", now.ISOTime},
					{"UTC", now.UTCTime},
				})
			}

			res, err := epoch.ToHuman(args[0], cfg.Location())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(out, res)
			}
			detected := res.Detected.DisplayName
			if res.Detected.Warning != "" {
				detected += " (" + res.Detected.Warning + ")"
			}
			return printFields(out, [][2]string{
				{"Detected", detected},
				{"Local", res.LocalTime},
				{"UTC", res.UTCTime},
				{"ISO 8601", res.ISOTime},
				{"Unix", strconv.FormatInt(res.Unix, 10)},
				{"Milliseconds", strconv.FormatInt(res.JS, 10)},
				{"Microseconds", strconv.FormatInt(res.Micro, 10)},
				{"Nanoseconds", res.Nano},
			})
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}
