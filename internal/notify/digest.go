package notify

import (
	"fmt"
	"strings"

	"github.com/zulandar/groundwork/internal/report"
)

// maxListed caps how many items a digest section lists by name.
const maxListed = 10

// PhaseLine is one phase's progress in a digest.
type PhaseLine struct {
	Name     string
	Progress float64
	Delayed  bool
}

// Digest is a point-in-time summary of a project's schedule risk.
type Digest struct {
	ProjectID int64
	Today     string
	Phases    []PhaseLine
	Delayed   []report.RiskItem
	Stale     []report.RiskItem
	Warnings  []string
}

// Quiet reports whether the digest has nothing that needs attention.
func (d Digest) Quiet() bool {
	return len(d.Delayed) == 0 && len(d.Stale) == 0 && len(d.Warnings) == 0
}

// BuildDigest summarizes a report. An item that is both delayed and stale is
// listed only as delayed.
func BuildDigest(p *report.Project) Digest {
	d := Digest{ProjectID: p.ID, Today: p.Today, Warnings: p.Warnings}
	for _, ph := range p.Phases {
		d.Phases = append(d.Phases, PhaseLine{Name: ph.Name, Progress: ph.Progress, Delayed: ph.Risk.IsDelayed})
	}
	for _, item := range p.AtRisk() {
		if item.Risk.IsDelayed {
			d.Delayed = append(d.Delayed, item)
		} else {
			d.Stale = append(d.Stale, item)
		}
	}
	return d
}

// Format renders a digest as a chat message.
func Format(d Digest) Message {
	msg := Message{
		Text: fmt.Sprintf("Project %d schedule digest for %s: %d delayed, %d awaiting update",
			d.ProjectID, d.Today, len(d.Delayed), len(d.Stale)),
	}

	if len(d.Phases) > 0 {
		sec := Section{Title: "Phase progress", Color: ColorInfo}
		for _, ph := range d.Phases {
			value := fmt.Sprintf("%.0f%%", ph.Progress)
			if ph.Delayed {
				value += " (delayed)"
			}
			sec.Fields = append(sec.Fields, Field{Name: ph.Name, Value: value, Short: true})
		}
		msg.Sections = append(msg.Sections, sec)
	}

	if len(d.Delayed) > 0 {
		msg.Sections = append(msg.Sections, Section{
			Title: fmt.Sprintf("Delayed (%d)", len(d.Delayed)),
			Body:  listItems(d.Delayed, false),
			Color: ColorDanger,
		})
	}
	if len(d.Stale) > 0 {
		msg.Sections = append(msg.Sections, Section{
			Title: fmt.Sprintf("Awaiting site log (%d)", len(d.Stale)),
			Body:  listItems(d.Stale, true),
			Color: ColorWarning,
		})
	}
	if len(d.Warnings) > 0 {
		msg.Sections = append(msg.Sections, Section{
			Title: "Data warnings",
			Body:  strings.Join(d.Warnings, "\n"),
			Color: ColorWarning,
		})
	}
	if d.Quiet() {
		msg.Sections = append(msg.Sections, Section{
			Title: "All tasks on schedule",
			Color: ColorOK,
		})
	}
	return msg
}

func listItems(items []report.RiskItem, withAge bool) string {
	var lines []string
	for i, item := range items {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("and %d more", len(items)-maxListed))
			break
		}
		line := fmt.Sprintf("%s %d: %s", item.Kind, item.ID, item.Name)
		if withAge {
			switch {
			case item.Risk.DaysSinceUpdate != nil:
				line += fmt.Sprintf(" (last log %d days ago)", *item.Risk.DaysSinceUpdate)
			default:
				line += " (never logged)"
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
