// Package static provides non-interactive terminal output components.
//
// This package renders change logs, workspace listings and folder
// mappings as borderless tables for terminals and as tab-separated
// lines for pipes.
package static

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/projectpath"
	"github.com/raphi011/tfsync/internal/tfs"
)

// commentWidth caps the COMMENT column.
const commentWidth = 60

// Column headers for the domain tables.
var (
	ChangeSetHeaders = []string{"REVISION", "AUTHOR", "DATE", "ITEMS", "COMMENT"}
	WorkspaceHeaders = []string{"NAME", "OWNER", "COMPUTER", "COMMENT"}
	MappingHeaders   = []string{"REPOSITORY PATH", "LOCAL PATH"}
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// RenderPlain renders rows as tab-separated lines without headers.
func RenderPlain(rows [][]string) string {
	var output strings.Builder
	for _, row := range rows {
		output.WriteString(strings.Join(row, "\t"))
		output.WriteString("\n")
	}
	return output.String()
}

// ChangeSetRow returns the table cells for one change set.
func ChangeSetRow(cs changeset.ChangeSet) []string {
	return []string{
		cs.Revision,
		cs.Author,
		cs.Date.Format("2006-01-02 15:04"),
		strconv.Itoa(len(cs.Items)),
		summarize(cs.Comment, commentWidth),
	}
}

// ChangeSetRows returns the table rows for change sets, keeping their order.
func ChangeSetRows(list []changeset.ChangeSet) [][]string {
	rows := make([][]string, 0, len(list))
	for _, cs := range list {
		rows = append(rows, ChangeSetRow(cs))
	}
	return rows
}

// WorkspaceRow returns the table cells for one workspace.
func WorkspaceRow(ws tfs.Workspace) []string {
	return []string{ws.Name, ws.Owner, ws.Computer, summarize(ws.Comment, commentWidth)}
}

// MappingRows returns the table rows for folder mappings.
func MappingRows(mappings []projectpath.Mapping) [][]string {
	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, []string{m.RepositoryPath, m.LocalPath})
	}
	return rows
}

// summarize returns the first line of s cut to width runes.
func summarize(s string, width int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(strings.TrimSpace(s))
	if len(r) <= width {
		return string(r)
	}
	return string(r[:width-3]) + "..."
}
