package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"aiPlanner/internal/models/task"

	"gopkg.in/yaml.v3"
)

// printOutput пишет v в json или yaml, иначе вызывает table с tabwriter
func printOutput(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("неизвестный формат вывода %q", format)
	}
}

// taskRow плоское представление задачи для json/yaml
type taskRow struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Type      string   `json:"type" yaml:"type"`
	Priority  string   `json:"priority" yaml:"priority"`
	State     string   `json:"state" yaml:"state"`
	Deadline  string   `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Focus     bool     `json:"focus" yaml:"focus"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Checklist string   `json:"checklist,omitempty" yaml:"checklist,omitempty"`
}

func toRow(t *task.Task) taskRow {
	row := taskRow{
		ID:       t.ID,
		Title:    t.Title,
		Type:     string(t.Type),
		Priority: string(t.Priority),
		State:    string(t.State),
		Focus:    t.IsFocus,
		Tags:     t.Tags,
	}
	if t.Deadline != nil {
		row.Deadline = t.Deadline.In(time.Local).Format("2006-01-02 15:04")
	}
	if len(t.Checklist) > 0 {
		done := 0
		for _, st := range t.Checklist {
			if st.IsCompleted {
				done++
			}
		}
		row.Checklist = fmt.Sprintf("%d/%d", done, len(t.Checklist))
	}
	return row
}

func toRows(tasks []*task.Task) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, toRow(t))
	}
	return rows
}

func writeTaskTable(tw *tabwriter.Writer, rows []taskRow) {
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRIORITY\tSTATE\tDEADLINE\tTAGS")
	for _, r := range rows {
		title := r.Title
		if r.Focus {
			title = "* " + title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, title, r.Type, r.Priority, r.State, dash(r.Deadline), dash(strings.Join(r.Tags, ",")))
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
