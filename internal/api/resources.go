package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zulandar/groundwork/internal/models"
)

// Tasks fetches every task of the project.
func (c *Client) Tasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	var wire []taskJSON
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/tasks", projectID), &wire); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(wire))
	for _, w := range wire {
		t := w.Task
		t.ProgressPercentage = w.ProgressPercentage.ptr()
		if t.ProjectID == 0 {
			t.ProjectID = projectID
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Phases fetches every phase of the project.
func (c *Client) Phases(ctx context.Context, projectID int64) ([]models.Phase, error) {
	var phases []models.Phase
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/phases", projectID), &phases); err != nil {
		return nil, err
	}
	for i := range phases {
		if phases[i].ProjectID == 0 {
			phases[i].ProjectID = projectID
		}
	}
	if phases == nil {
		phases = []models.Phase{}
	}
	return phases, nil
}

// Logs fetches every construction log of the project.
func (c *Client) Logs(ctx context.Context, projectID int64) ([]models.ConstructionLog, error) {
	var wire []logJSON
	if err := c.get(ctx, fmt.Sprintf("/projects/%d/logs", projectID), &wire); err != nil {
		return nil, err
	}
	logs := make([]models.ConstructionLog, 0, len(wire))
	for _, w := range wire {
		l := w.ConstructionLog
		l.CompletionPercentage = w.CompletionPercentage.ptr()
		if l.ProjectID == 0 {
			l.ProjectID = projectID
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// taskJSON accepts progress as a number, a numeric string or null.
type taskJSON struct {
	models.Task
	ProgressPercentage looseFloat `json:"progress_percentage"`
}

type logJSON struct {
	models.ConstructionLog
	CompletionPercentage looseFloat `json:"completion_percentage"`
}

// looseFloat decodes JSON numbers and numeric strings such as "45.00".
// Null, empty, unparseable and non-scalar values (bools, objects, arrays)
// decode as absent, which coerces to 0.
type looseFloat struct {
	v   float64
	set bool
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = looseFloat{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = looseFloat{}
			return nil
		}
		*f = looseFloat{v: v, set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = looseFloat{}
		return nil
	}
	*f = looseFloat{v: v, set: true}
	return nil
}

func (f looseFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}
