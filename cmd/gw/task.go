package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/report"
	"github.com/zulandar/groundwork/internal/store"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskTreeCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskProgressCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
		parentID    int64
		phaseID     int64
		priority    string
		start       string
		end         string
		progress    float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Long:  "Creates a task, optionally nested under a parent task and grouped into a phase.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := store.TaskOpts{
				Name:        name,
				Description: description,
				ParentID:    optionalID(parentID),
				PhaseID:     optionalID(phaseID),
				Priority:    models.TaskPriority(priority),
				StartDate:   optionalString(start),
				EndDate:     optionalString(end),
			}
			if cmd.Flags().Changed("progress") {
				opts.ProgressPercentage = &progress
			}
			return runTaskCreate(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().StringVar(&name, "name", "", "task name (required)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent task ID")
	cmd.Flags().Int64Var(&phaseID, "phase", 0, "phase ID")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityMedium), "priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&start, "start", "", "planned start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "planned end date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&progress, "progress", 0, "initial progress percentage (0-100)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runTaskCreate(cmd *cobra.Command, configPath string, opts store.TaskOpts) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()
	opts.ProjectID = cfg.ProjectID

	t, err := st.CreateTask(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task %d: %s\n", t.ID, t.Name)
	if t.ParentID != nil {
		fmt.Fprintf(out, "Parent: %d\n", *t.ParentID)
	}
	if t.PhaseID != nil {
		fmt.Fprintf(out, "Phase: %d\n", *t.PhaseID)
	}
	return nil
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		phaseID    int64
		parentID   int64
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "Lists tasks with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList(cmd, configPath, store.TaskFilters{
				PhaseID:  optionalID(phaseID),
				ParentID: optionalID(parentID),
				Status:   models.TaskStatus(status),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().Int64Var(&phaseID, "phase", 0, "filter by phase ID")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "filter by parent task ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func runTaskList(cmd *cobra.Command, configPath string, filters store.TaskFilters) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if filters.Status != "" && !filters.Status.Valid() {
		return fmt.Errorf("invalid status %q", filters.Status)
	}
	tasks, err := st.ListTasks(cmd.Context(), cfg.ProjectID, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPRIORITY\tPARENT\tPHASE\tPROGRESS\tEND")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, truncate(t.Name, 40), t.Status, t.Priority, formatID(t.ParentID), formatID(t.PhaseID),
			formatOptionalPercent(t.ProgressPercentage), formatDate(t.EndDate))
	}
	return w.Flush()
}

func newTaskShowCmd() *cobra.Command {
	var (
		configPath string
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details and schedule risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return runTaskShow(cmd, configPath, remote, id)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the REST server instead of the local database")
	return cmd
}

func runTaskShow(cmd *cobra.Command, configPath string, remote bool, id int64) error {
	_, p, err := loadReport(cmd.Context(), configPath, remote)
	if err != nil {
		return err
	}
	n, ok := p.Task(id)
	if !ok {
		return fmt.Errorf("task %d not found in project %d", id, p.ID)
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintf(out, "Task:        %d\n", n.ID)
	fmt.Fprintf(out, "Name:        %s\n", n.Name)
	fmt.Fprintf(out, "Status:      %s\n", n.Status)
	fmt.Fprintf(out, "Priority:    %s\n", n.Priority)
	fmt.Fprintf(out, "Parent:      %s\n", formatID(n.ParentID))
	if n.PhaseID != nil {
		if ph, ok := p.Phase(*n.PhaseID); ok {
			fmt.Fprintf(out, "Phase:       %d (%s)\n", ph.ID, ph.Name)
		} else {
			fmt.Fprintf(out, "Phase:       %d\n", *n.PhaseID)
		}
	}
	fmt.Fprintf(out, "Window:      %s to %s\n", formatDate(n.StartDate), formatDate(n.EndDate))
	fmt.Fprintf(out, "Progress:    %s %s\n", progressBar(n.Progress), formatPercent(n.Progress))
	fmt.Fprintf(out, "Risk:        %s\n", st.riskLabel(n.Risk))
	if n.Risk.LastLogDate != "" {
		fmt.Fprintf(out, "Last log:    %s", n.Risk.LastLogDate)
		if n.Risk.DaysSinceUpdate != nil {
			fmt.Fprintf(out, " (%d days ago)", *n.Risk.DaysSinceUpdate)
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, "Last log:    never")
	}
	fmt.Fprintf(out, "Min log %%:   %s\n", formatPercent(p.CompletionFloor(n.ID, nil)))
	if n.Description != "" {
		fmt.Fprintf(out, "\n%s\n", n.Description)
	}
	if len(n.Children) > 0 {
		fmt.Fprintf(out, "\nSubtasks (%d):\n", len(n.Children))
		for _, c := range n.Children {
			fmt.Fprintf(out, "  %d  %s  %s\n", c.ID, truncate(c.Name, 40), formatPercent(c.Progress))
		}
	}
	return nil
}

func newTaskTreeCmd() *cobra.Command {
	var (
		configPath string
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the task hierarchy with progress and risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskTree(cmd, configPath, remote)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the REST server instead of the local database")
	return cmd
}

func runTaskTree(cmd *cobra.Command, configPath string, remote bool) error {
	_, p, err := loadReport(cmd.Context(), configPath, remote)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(p.Tree) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}
	renderTree(out, p, terminalWidth(out))
	for _, warn := range p.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warn)
	}
	return nil
}

// renderTree writes one line per task, indented by depth.
func renderTree(out io.Writer, p *report.Project, width int) {
	st := newStyles(out)
	maxName := nameWidth(width)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	p.Walk(func(n *report.TaskNode) {
		label := strings.Repeat("  ", n.Depth) + strconv.FormatInt(n.ID, 10) + " " + n.Name
		status := string(n.Status)
		if n.Status == models.TaskStatusCompleted {
			status = st.done.Render(status)
		}
		fmt.Fprintf(w, "%s\t%s %4s\t%s\t%s\n",
			truncate(label, maxName), progressBar(n.Progress), formatPercent(n.Progress), status, st.riskLabel(n.Risk))
	})
	w.Flush()
}

func newTaskStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change a task's status",
		Long:  "Moves a task to not_started, in_progress, completed or delayed. Transitions are validated.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return runTaskStatus(cmd, configPath, id, models.TaskStatus(args[1]))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	return cmd
}

func runTaskStatus(cmd *cobra.Command, configPath string, id int64, status models.TaskStatus) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateTaskStatus(cmd.Context(), cfg.ProjectID, id, status); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d status: %s\n", id, status)
	return nil
}

func newTaskProgressCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "progress <id> <percent>",
		Short: "Set a leaf task's progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			pct, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[1])
			}
			return runTaskProgress(cmd, configPath, id, pct)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Groundwork config file")
	return cmd
}

func runTaskProgress(cmd *cobra.Command, configPath string, id int64, pct float64) error {
	cfg, st, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SetTaskProgress(cmd.Context(), cfg.ProjectID, id, pct); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d progress: %s\n", id, formatPercent(pct))
	return nil
}
