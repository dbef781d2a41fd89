// Package report assembles a project's tasks, phases and logs into the
// progress and risk view shared by the CLI, dashboard and digests.
package report

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
)

// Source fetches one project's working set. It is implemented by the
// database store and the REST client.
type Source interface {
	Tasks(ctx context.Context, projectID int64) ([]models.Task, error)
	Phases(ctx context.Context, projectID int64) ([]models.Phase, error)
	Logs(ctx context.Context, projectID int64) ([]models.ConstructionLog, error)
}

// Options tunes aggregation and risk evaluation.
type Options struct {
	Policy         schedule.AggregationPolicy
	Clock          schedule.Clock
	StaleAfterDays int
}

// TaskNode is a task in the report tree with its derived risk.
type TaskNode struct {
	models.Task
	Progress float64       `json:"progress"`
	Depth    int           `json:"depth"`
	Risk     schedule.Risk `json:"risk"`
	Children []*TaskNode   `json:"children,omitempty"`
}

// PhaseSummary is a phase with its aggregated progress and risk.
type PhaseSummary struct {
	models.Phase
	Progress  float64       `json:"progress"`
	TaskCount int           `json:"task_count"`
	Risk      schedule.Risk `json:"risk"`
}

// RiskItem is one delayed or stale task or phase.
type RiskItem struct {
	Kind string        `json:"kind"` // task, phase
	ID   int64         `json:"id"`
	Name string        `json:"name"`
	Risk schedule.Risk `json:"risk"`
}

// Project is the assembled view of one project.
type Project struct {
	ID       int64                      `json:"project_id"`
	Today    string                     `json:"today"`
	Policy   schedule.AggregationPolicy `json:"policy"`
	Phases   []PhaseSummary             `json:"phases"`
	Tree     []*TaskNode                `json:"tree"`
	Warnings []string                   `json:"warnings,omitempty"`

	nodes map[int64]*TaskNode
	logs  []models.ConstructionLog
	loc   *time.Location
}

// Build fetches the project's tasks, phases and logs from src and derives the
// hierarchy, phase progress and risk flags. The working set is rebuilt from
// scratch on every call.
func Build(ctx context.Context, src Source, projectID int64, opts Options) (*Project, error) {
	tasks, err := src.Tasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("report: fetch tasks: %w", err)
	}
	phases, err := src.Phases(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("report: fetch phases: %w", err)
	}
	logs, err := src.Logs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("report: fetch logs: %w", err)
	}
	return Assemble(projectID, tasks, phases, logs, opts), nil
}

// Assemble derives the report from an already fetched working set.
func Assemble(projectID int64, tasks []models.Task, phases []models.Phase, logs []models.ConstructionLog, opts Options) *Project {
	if opts.Policy == "" {
		opts.Policy = schedule.PolicyMean
	}
	eval := schedule.NewEvaluator(opts.Clock, opts.StaleAfterDays)
	h := schedule.BuildHierarchy(tasks)

	p := &Project{
		ID:     projectID,
		Today:  eval.Today().Format("2006-01-02"),
		Policy: opts.Policy,
		nodes:  make(map[int64]*TaskNode, h.Len()),
		logs:   logs,
		loc:    eval.Today().Location(),
	}

	for _, w := range h.Warnings {
		log.Printf("report: project %d: %s", projectID, w)
		p.Warnings = append(p.Warnings, w.String())
	}

	for _, root := range h.Roots {
		p.Tree = append(p.Tree, p.convert(root, 0, eval))
	}

	for _, ph := range phases {
		count := 0
		for _, root := range h.Roots {
			if root.PhaseID != nil && *root.PhaseID == ph.ID {
				count++
			}
		}
		p.Phases = append(p.Phases, PhaseSummary{
			Phase:     ph,
			Progress:  h.PhaseProgress(ph, opts.Policy),
			TaskCount: count,
			Risk:      eval.EvaluatePhase(ph, tasks, logs),
		})
	}
	return p
}

func (p *Project) convert(n *schedule.Node, depth int, eval *schedule.Evaluator) *TaskNode {
	tn := &TaskNode{
		Task:     n.Task,
		Progress: schedule.TaskProgress(n.Task),
		Depth:    depth,
		Risk:     eval.EvaluateTask(n.Task, p.logs),
	}
	p.nodes[n.ID] = tn
	for _, c := range n.Children {
		tn.Children = append(tn.Children, p.convert(c, depth+1, eval))
	}
	return tn
}

// Task returns the tree node for id.
func (p *Project) Task(id int64) (*TaskNode, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// Phase returns the summary for a phase id.
func (p *Project) Phase(id int64) (PhaseSummary, bool) {
	for _, ph := range p.Phases {
		if ph.ID == id {
			return ph, true
		}
	}
	return PhaseSummary{}, false
}

// Walk visits the tree depth-first in pre-order.
func (p *Project) Walk(fn func(n *TaskNode)) {
	var visit func(n *TaskNode)
	visit = func(n *TaskNode) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range p.Tree {
		visit(r)
	}
}

// AtRisk lists delayed or stale phases followed by tasks in tree order.
func (p *Project) AtRisk() []RiskItem {
	var items []RiskItem
	for _, ph := range p.Phases {
		if ph.Risk.AtRisk() {
			items = append(items, RiskItem{Kind: "phase", ID: ph.ID, Name: ph.Name, Risk: ph.Risk})
		}
	}
	p.Walk(func(n *TaskNode) {
		if n.Risk.AtRisk() {
			items = append(items, RiskItem{Kind: "task", ID: n.ID, Name: n.Name, Risk: n.Risk})
		}
	})
	return items
}

// CompletionFloor returns the lowest completion a new log for taskID may
// report, excluding excludeLogID when editing. Log dates are ordered by
// calendar day in the report clock's location, as risk evaluation does.
func (p *Project) CompletionFloor(taskID int64, excludeLogID *int64) float64 {
	return schedule.MinAllowedCompletionIn(taskID, p.logs, excludeLogID, p.loc)
}

// Logs returns the construction logs the report was built from.
func (p *Project) Logs() []models.ConstructionLog { return p.logs }
