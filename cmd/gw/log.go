package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
	"github.com/zulandar/groundwork/internal/store"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Construction log commands",
	}

	cmd.AddCommand(newLogAddCmd())
	cmd.AddCommand(newLogListCmd())
	cmd.AddCommand(newLogFloorCmd())
	return cmd
}

func newLogAddCmd() *cobra.Command {
	var (
		configPath  string
		taskID      int64
		date        string
		completion  float64
		weather     string
		personnel   int
		notes       string
		attachments []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a construction log",
		Long: "Records a dated site log, optionally against a task. A reported completion\n" +
			"may not fall below the task's most recent log.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := store.LogOpts{
				TaskID:         optionalID(taskID),
				LogDate:        date,
				Weather:        weather,
				PersonnelCount: personnel,
				Notes:          notes,
				Attachments:    attachments,
			}
			if cmd.Flags().Changed("completion") {
				opts.CompletionPercentage = &completion
			}
			return runLogAdd(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().Int64Var(&taskID, "task", 0, "task ID the log reports on")
	cmd.Flags().StringVar(&date, "date", "", "log date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&completion, "completion", 0, "task completion percentage (0-100)")
	cmd.Flags().StringVar(&weather, "weather", "", "site weather")
	cmd.Flags().IntVar(&personnel, "personnel", 0, "personnel on site")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringSliceVar(&attachments, "attach", nil, "attachment reference (repeatable)")
	return cmd
}

func runLogAdd(cmd *cobra.Command, configPath string, opts store.LogOpts) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()
	opts.ProjectID = cfg.ProjectID
	if opts.LogDate == "" {
		opts.LogDate = schedule.Today(schedule.SystemClock{Location: cfg.Location()}).Format("2006-01-02")
	}

	l, err := st.CreateLog(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, schedule.ErrBelowFloor) && opts.TaskID != nil {
			floor, ferr := st.CompletionFloor(cmd.Context(), cfg.ProjectID, *opts.TaskID, nil)
			if ferr == nil {
				return fmt.Errorf("%w (minimum for task %d is %s)", err, *opts.TaskID, formatPercent(floor))
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded log %d for %s\n", l.ID, l.LogDate)
	if l.TaskID != nil {
		fmt.Fprintf(out, "Task: %d", *l.TaskID)
		if l.CompletionPercentage != nil {
			fmt.Fprintf(out, " at %s", formatPercent(*l.CompletionPercentage))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func newLogListCmd() *cobra.Command {
	var (
		configPath string
		taskID     int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List construction logs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogList(cmd, configPath, taskID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().Int64Var(&taskID, "task", 0, "only logs for this task")
	return cmd
}

func runLogList(cmd *cobra.Command, configPath string, taskID int64) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var logs []models.ConstructionLog
	if taskID > 0 {
		logs, err = st.ListTaskLogs(cmd.Context(), cfg.ProjectID, taskID)
	} else {
		logs, err = st.ListLogs(cmd.Context(), cfg.ProjectID)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(logs) == 0 {
		fmt.Fprintln(out, "No logs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTASK\tCOMPLETION\tCREW\tWEATHER\tNOTES")
	for _, l := range logs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.LogDate, formatID(l.TaskID), formatOptionalPercent(l.CompletionPercentage),
			l.PersonnelCount, truncate(l.Weather, 16), truncate(l.Notes, 40))
	}
	return w.Flush()
}

func newLogFloorCmd() *cobra.Command {
	var (
		configPath string
		exclude    int64
	)

	cmd := &cobra.Command{
		Use:   "floor <task-id>",
		Short: "Show the lowest completion a new log for a task may report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return runLogFloor(cmd, configPath, id, optionalID(exclude))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().Int64Var(&exclude, "exclude", 0, "log ID being edited, left out of the floor")
	return cmd
}

func runLogFloor(cmd *cobra.Command, configPath string, taskID int64, exclude *int64) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.GetTask(cmd.Context(), cfg.ProjectID, taskID); err != nil {
		return err
	}
	floor, err := st.CompletionFloor(cmd.Context(), cfg.ProjectID, taskID, exclude)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d minimum completion: %s\n", taskID, formatPercent(floor))
	return nil
}
