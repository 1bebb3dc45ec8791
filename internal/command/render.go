package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/view"
)

var timeNow = time.Now

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	spamStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

const (
	markWidth     = 1
	senderWidth   = 20
	previewWidth  = 48
	whenWidth     = 12
	analyzedWidth = 16
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// row is the serialized form of one visible conversation
type row struct {
	Sender      string     `json:"sender" yaml:"sender"`
	Preview     string     `json:"preview" yaml:"preview"`
	Timestamp   string     `json:"timestamp" yaml:"timestamp"`
	Link        string     `json:"link,omitempty" yaml:"link,omitempty"`
	Priority    string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	Highlighted bool       `json:"highlighted,omitempty" yaml:"highlighted,omitempty"`
	Keywords    []string   `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Responded   bool       `json:"responded,omitempty" yaml:"responded,omitempty"`
	AnalyzedAt  *time.Time `json:"analyzedAt,omitempty" yaml:"analyzedAt,omitempty"`
}

func newRow(n view.Node) row {
	r := row{
		Sender:      n.Item.Sender,
		Preview:     n.Item.Preview,
		Timestamp:   n.Item.Timestamp,
		Link:        n.Item.Link,
		Priority:    string(n.Item.Label),
		Highlighted: n.Highlighted,
		Keywords:    n.Item.Keywords,
		Responded:   n.Item.Responded,
	}
	if !n.Item.AnalyzedAt.IsZero() {
		at := n.Item.AnalyzedAt
		r.AnalyzedAt = &at
	}
	return r
}

// visibleItems returns the item nodes in display order and the number of
// hidden items
func visibleItems(nodes []view.Node) (visible []view.Node, hidden int) {
	for _, n := range nodes {
		switch {
		case n.Indicator:
		case n.Hidden:
			hidden++
		default:
			visible = append(visible, n)
		}
	}
	return visible, hidden
}

func render(w io.Writer, format outputFormat, nodes []view.Node, hidden int, now time.Time) error {
	switch format {
	case formatJSON, formatYAML:
		rows := make([]row, 0, len(nodes))
		for _, n := range nodes {
			rows = append(rows, newRow(n))
		}
		if format == formatYAML {
			return writeYAML(w, rows)
		}
		return writeJSON(w, rows)
	default:
		return renderTable(w, nodes, hidden, now)
	}
}

func renderTable(w io.Writer, nodes []view.Node, hidden int, now time.Time) error {
	header := strings.Join([]string{
		cell("", markWidth),
		cell("SENDER", senderWidth),
		cell("PREVIEW", previewWidth),
		cell("WHEN", whenWidth),
		cell("ANALYZED", analyzedWidth),
	}, " ")
	if _, err := fmt.Fprintln(w, headerStyle.Render(header)); err != nil {
		return err
	}

	for _, n := range nodes {
		line := strings.Join([]string{
			cell(mark(n), markWidth),
			cell(n.Item.Sender, senderWidth),
			cell(n.Item.Preview, previewWidth),
			cell(n.Item.Timestamp, whenWidth),
			cell(analyzed(n.Item.AnalyzedAt, now), analyzedWidth),
		}, " ")
		switch {
		case n.Highlighted || n.Item.Label == core.LabelHigh:
			line = highStyle.Render(line)
		case n.Item.Label == core.LabelSpam:
			line = spamStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if hidden > 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d spam conversations hidden", hidden)))
		return err
	}
	return nil
}

// cell truncates or pads s to exactly width terminal columns
func cell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func mark(n view.Node) string {
	switch {
	case n.Item.Responded:
		return "✓"
	case n.Highlighted || n.Item.Label == core.LabelHigh:
		return "!"
	case n.Item.Label == core.LabelSpam:
		return "x"
	default:
		return ""
	}
}

func analyzed(at, now time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
