package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRiskCmd() *cobra.Command {
	var (
		configPath string
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "List delayed tasks and work waiting on a site log",
		Long: "Lists phases and tasks that are past their end date without being finished,\n" +
			"or that have started but have no recent construction log.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRisk(cmd, configPath, remote)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the REST server instead of the local database")
	return cmd
}

func runRisk(cmd *cobra.Command, configPath string, remote bool) error {
	cfg, p, err := loadReport(cmd.Context(), configPath, remote)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	items := p.AtRisk()
	if len(items) == 0 {
		fmt.Fprintf(out, "Nothing at risk as of %s.\n", p.Today)
		return nil
	}

	st := newStyles(out)
	fmt.Fprintf(out, "At risk as of %s (stale after %d days):\n\n", p.Today, cfg.Schedule.StaleAfterDays)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tNAME\tLAST LOG\tRISK")
	for _, item := range items {
		last := item.Risk.LastLogDate
		if last == "" {
			last = "never"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			item.Kind, item.ID, truncate(item.Name, nameWidth(terminalWidth(out))), last, st.riskLabel(item.Risk))
	}
	return w.Flush()
}
