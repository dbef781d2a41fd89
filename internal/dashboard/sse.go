package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/groundwork/internal/report"
)

// riskEvent summarizes a project's at-risk items for SSE clients.
type riskEvent struct {
	Today   string            `json:"today"`
	Delayed int               `json:"delayed"`
	Stale   int               `json:"stale"`
	Items   []report.RiskItem `json:"items"`
}

func newRiskEvent(p *report.Project) riskEvent {
	evt := riskEvent{Today: p.Today, Items: p.AtRisk()}
	if evt.Items == nil {
		evt.Items = []report.RiskItem{}
	}
	for _, item := range evt.Items {
		if item.Risk.IsDelayed {
			evt.Delayed++
		}
		if item.Risk.NeedsUpdate {
			evt.Stale++
		}
	}
	return evt
}

// handleEvents streams the project's risk summary. A "risks" event is sent on
// connect and again whenever the delayed or stale counts change.
func (h *handler) handleEvents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	writeSSE(c.Writer, "connected", map[string]int64{"project_id": id})
	c.Writer.Flush()

	ctx := c.Request.Context()
	var last *riskEvent
	poll := func() {
		p, err := report.Build(ctx, h.src, id, h.opts)
		if err != nil {
			writeSSE(c.Writer, "error", map[string]string{"error": err.Error()})
			c.Writer.Flush()
			return
		}
		evt := newRiskEvent(p)
		if last != nil && last.Delayed == evt.Delayed && last.Stale == evt.Stale && last.Today == evt.Today {
			return
		}
		last = &evt
		writeSSE(c.Writer, "risks", evt)
		c.Writer.Flush()
	}
	poll()

	ticker := time.NewTicker(h.eventInterval)
	heartbeat := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			poll()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
