package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/groundwork/internal/report"
)

type handler struct {
	src           report.Source
	opts          report.Options
	eventInterval time.Duration
}

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, h *handler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	projects := router.Group("/projects/:id")
	projects.GET("/report", h.handleReport)
	projects.GET("/tree", h.handleTree)
	projects.GET("/phases", h.handlePhases)
	projects.GET("/risks", h.handleRisks)
	projects.GET("/tasks/:taskID", h.handleTask)
	projects.GET("/tasks/:taskID/completion-floor", h.handleCompletionFloor)
	projects.GET("/events", h.handleEvents)
}

func (h *handler) handleReport(c *gin.Context) {
	p, ok := h.loadProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) handleTree(c *gin.Context) {
	p, ok := h.loadProject(c)
	if !ok {
		return
	}
	tree := p.Tree
	if tree == nil {
		tree = []*report.TaskNode{}
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree, "warnings": p.Warnings})
}

func (h *handler) handlePhases(c *gin.Context) {
	p, ok := h.loadProject(c)
	if !ok {
		return
	}
	phases := p.Phases
	if phases == nil {
		phases = []report.PhaseSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"phases": phases})
}

func (h *handler) handleRisks(c *gin.Context) {
	p, ok := h.loadProject(c)
	if !ok {
		return
	}
	risks := p.AtRisk()
	if risks == nil {
		risks = []report.RiskItem{}
	}
	c.JSON(http.StatusOK, gin.H{"today": p.Today, "risks": risks})
}

func (h *handler) handleTask(c *gin.Context) {
	taskID, ok := pathID(c, "taskID")
	if !ok {
		return
	}
	p, ok := h.loadProject(c)
	if !ok {
		return
	}
	node, found := p.Task(taskID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *handler) handleCompletionFloor(c *gin.Context) {
	taskID, ok := pathID(c, "taskID")
	if !ok {
		return
	}
	exclude, ok := queryID(c, "exclude")
	if !ok {
		return
	}
	p, ok := h.loadProject(c)
	if !ok {
		return
	}
	if _, found := p.Task(taskID); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": taskID,
		"floor":   p.CompletionFloor(taskID, exclude),
	})
}
