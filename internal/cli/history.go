package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/guiyumin/vlink/internal/core/auditlog"
	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent resolve requests from the audit log",
	Long: `List recent resolve requests recorded by the audit log.

Works with the file and sqlite audit drivers:
  vlink config set audit.driver sqlite
  vlink history -n 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadOrDefault()
		return printHistory(cmd.Context(), cfg.Audit, historyLimit)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func printHistory(ctx context.Context, audit config.AuditConfig, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sink, err := auditlog.Open(audit.Driver, audit.Path)
	if err != nil {
		return err
	}
	defer sink.Close()

	lister, ok := sink.(auditlog.Lister)
	if !ok {
		return fmt.Errorf("audit driver %q does not keep history", audit.Driver)
	}

	entries, err := lister.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No requests recorded yet.")
		return nil
	}

	cyan := color.New(color.FgCyan)
	for _, e := range entries {
		cyan.Printf("[%s]", e.Time.Format("2006-01-02 15:04:05"))
		fmt.Printf(" %-9s %s\n", e.Platform, e.URL)
	}
	return nil
}
