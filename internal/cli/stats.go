package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusnest/internal/forest"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completed focus sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.tracker.Read(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today: %d\n", c.Today)
			fmt.Fprintf(out, "total: %d\n", c.Total)
			fmt.Fprintf(out, "since: %s\n", c.LastResetDate)
			if c.Total > 0 {
				plot := forest.Layout(c.Total, forest.DashboardMax)
				fmt.Fprintf(out, "\n%s\n", strings.Repeat(forest.Tree, plot.Visible))
				if plot.Hidden > 0 {
					fmt.Fprintf(out, "+%d more\n", plot.Hidden)
				}
			}
			if a.tracker.Degraded() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: storage unavailable, showing in-memory counters")
			}
			return nil
		},
	}
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset today and total counters to zero",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Reset all progress? [y/N]: ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			a, err := openApp(flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.tracker.Reset(cmd.Context())
			a.logger.Info("progress reset from cli")
			fmt.Fprintf(cmd.OutOrStdout(), "progress reset (today: %d, total: %d)\n", c.Today, c.Total)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
