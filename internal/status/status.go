package status

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mmr-tortoise/denver/internal/model"
)

const (
	// Padding is the number of blank cells appended after the widest value
	// of every column.
	Padding = 2

	// StateNotCreated is the state shown for a declared container that has
	// no live counterpart.
	StateNotCreated = "NOT CREATED"
)

// PlaceholderID stands in for the container ID of a declared-only row.
var PlaceholderID = strings.Repeat("-", model.ShortIDLength)

// Header is the first line of every rendered table.
var Header = Row{
	ID:     "CONTAINER ID",
	Name:   "NAME",
	Image:  "IMAGE",
	State:  "STATE",
	Status: "STATUS",
}

// Row is one line of the status table.
type Row struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	State  string `json:"state"`
	Status string `json:"status"`
}

// LiveRow projects a live container onto a row. The ID is truncated to
// its short form.
func LiveRow(c model.LiveContainer) Row {
	return Row{
		ID:     c.ShortID(),
		Name:   c.Name(),
		Image:  c.Image,
		State:  c.State,
		Status: c.Status,
	}
}

// DeclaredRow builds the placeholder row for a declared definition that has
// no live container. The declared tag fills the image column.
func DeclaredRow(def *model.ContainerDefinition) Row {
	return Row{
		ID:    PlaceholderID,
		Name:  def.Name,
		Image: def.Tag,
		State: StateNotCreated,
	}
}

// Rows merges live and declared-only containers into status rows. Live
// rows come first in the order given, followed by declared-only rows.
func Rows(live []model.LiveContainer, declared []*model.ContainerDefinition) []Row {
	rows := make([]Row, 0, len(live)+len(declared))
	for _, c := range live {
		rows = append(rows, LiveRow(c))
	}
	for _, def := range declared {
		rows = append(rows, DeclaredRow(def))
	}
	return rows
}

// Render formats rows as a table preceded by Header.
//
// Each column is as wide as its widest cell (header included) plus Padding,
// measured in terminal display cells. The ID column is fixed at the short
// ID length plus Padding. States are upper-cased; every other cell is
// printed verbatim. Row order is preserved and every line, the last
// column included, is padded to the full table width.
func Render(rows []Row) string {
	all := make([]Row, 0, len(rows)+1)
	all = append(all, Header)
	for _, r := range rows {
		r.State = strings.ToUpper(r.State)
		all = append(all, r)
	}

	widths := columnWidths(all)

	var b strings.Builder
	for _, r := range all {
		for i, cell := range r.cells() {
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// columnWidths returns the rendered width of each column.
func columnWidths(rows []Row) [5]int {
	var widths [5]int
	widths[0] = model.ShortIDLength + Padding
	for _, r := range rows {
		for i, cell := range r.cells() {
			if i == 0 {
				continue
			}
			if w := runewidth.StringWidth(cell) + Padding; w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (r Row) cells() [5]string {
	return [5]string{r.ID, r.Name, r.Image, r.State, r.Status}
}
