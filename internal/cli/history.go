package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusnest/internal/storage"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed focus sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.journal == nil {
				fmt.Fprintf(out, "No session history: the %s backend does not keep one.\n", a.cfg.Storage.Backend)
				return nil
			}
			entries, err := a.journal.ListCompletions(cmd.Context(), storage.CompletionListFilter{Limit: limit})
			if err != nil {
				return fmt.Errorf("list completions: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No completed sessions yet.")
				return nil
			}

			fmt.Fprintf(out, "Recent Sessions (%d):\n\n", len(entries))
			for _, e := range entries {
				id := e.ID
				if len(id) > 8 {
					id = id[:8]
				}
				fmt.Fprintf(out, "  %s  %3dm  %s\n", e.CompletedAt.Local().Format("2006-01-02 15:04"), e.FocusMinutes, id)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of sessions to show")
	return cmd
}
