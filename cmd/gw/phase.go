package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/store"
)

func newPhaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Phase management commands",
	}

	cmd.AddCommand(newPhaseCreateCmd())
	cmd.AddCommand(newPhaseListCmd())
	cmd.AddCommand(newPhaseProgressCmd())
	return cmd
}

func newPhaseCreateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		start      string
		end        string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhaseCreate(cmd, configPath, store.PhaseOpts{
				Name:      name,
				StartDate: optionalString(start),
				EndDate:   optionalString(end),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().StringVar(&name, "name", "", "phase name (required)")
	cmd.Flags().StringVar(&start, "start", "", "planned start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "planned end date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runPhaseCreate(cmd *cobra.Command, configPath string, opts store.PhaseOpts) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()
	opts.ProjectID = cfg.ProjectID

	p, err := st.CreatePhase(cmd.Context(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created phase %d: %s\n", p.ID, p.Name)
	return nil
}

func newPhaseListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhaseList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	return cmd
}

func runPhaseList(cmd *cobra.Command, configPath string) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	phases, err := st.ListPhases(cmd.Context(), cfg.ProjectID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(phases) == 0 {
		fmt.Fprintln(out, "No phases found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTART\tEND")
	for _, p := range phases {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, truncate(p.Name, 40), formatDate(p.StartDate), formatDate(p.EndDate))
	}
	return w.Flush()
}

func newPhaseProgressCmd() *cobra.Command {
	var (
		configPath string
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show derived progress and risk per phase",
		Long: "Shows each phase's progress aggregated from its top-level tasks, with\n" +
			"delay and missing-log flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhaseProgress(cmd, configPath, remote)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the REST server instead of the local database")
	return cmd
}

func runPhaseProgress(cmd *cobra.Command, configPath string, remote bool) error {
	_, p, err := loadReport(cmd.Context(), configPath, remote)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(p.Phases) == 0 {
		fmt.Fprintln(out, "No phases found.")
		return nil
	}

	st := newStyles(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPROGRESS\t\tTASKS\tEND\tRISK")
	for _, ph := range p.Phases {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			ph.ID, truncate(ph.Name, 30), progressBar(ph.Progress), formatPercent(ph.Progress),
			ph.TaskCount, formatDate(ph.EndDate), st.riskLabel(ph.Risk))
	}
	return w.Flush()
}
