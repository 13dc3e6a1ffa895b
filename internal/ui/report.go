package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"datalayout/internal/layout"
	"datalayout/internal/typeexpr"
	"datalayout/internal/types"
)

// FieldRow is one line of a struct layout report.
type FieldRow struct {
	Index  int
	Type   string
	Offset int64
	Size   int64
	Align  int
}

// BuildFieldRows computes the report rows for a struct type.
func BuildFieldRows(e *layout.Engine, id types.TypeID) ([]FieldRow, *layout.StructLayout, error) {
	sl, err := e.StructLayoutOf(id)
	if err != nil {
		return nil, nil, err
	}
	info, ok := e.Types().StructInfo(id)
	if !ok {
		return nil, nil, fmt.Errorf("type is not a struct")
	}
	rows := make([]FieldRow, len(info.Fields))
	for i, f := range info.Fields {
		size, err := e.SizeOf(f.Type)
		if err != nil {
			return nil, nil, err
		}
		align, err := e.ABIAlignOf(f.Type)
		if err != nil {
			return nil, nil, err
		}
		rows[i] = FieldRow{
			Index:  i,
			Type:   typeexpr.Format(e.Types(), f.Type),
			Offset: sl.Offsets[i],
			Size:   size,
			Align:  align,
		}
	}
	return rows, sl, nil
}

// numPrinter renders large byte counts with digit grouping so wide array
// payloads stay readable.
var numPrinter = message.NewPrinter(language.English)

// FormatBytes renders a byte count with digit grouping.
func FormatBytes(n int64) string {
	return numPrinter.Sprintf("%d", n)
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	offsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// RenderStruct renders a struct layout report as a plain-text table.
func RenderStruct(title string, rows []FieldRow, sl *layout.StructLayout) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	typeWidth := len("type")
	for _, r := range rows {
		if w := runewidth.StringWidth(r.Type); w > typeWidth {
			typeWidth = w
		}
	}
	if typeWidth > 40 {
		typeWidth = 40
	}

	fmt.Fprintf(&b, "  %3s  %-*s  %10s  %10s  %6s\n", "#", typeWidth, "type", "offset", "size", "align")
	for _, r := range rows {
		// Pad before styling: ANSI escapes would throw off %10s widths.
		offset := offsetStyle.Render(fmt.Sprintf("%10s", FormatBytes(r.Offset)))
		fmt.Fprintf(&b, "  %3d  %-*s  %s  %10s  %6d\n",
			r.Index,
			typeWidth, truncate(r.Type, typeWidth),
			offset,
			FormatBytes(r.Size),
			r.Align,
		)
	}
	fmt.Fprintf(&b, "%s\n", summaryStyle.Render(
		fmt.Sprintf("  total %s bytes, align %d", FormatBytes(sl.Size), sl.Align)))
	return b.String()
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
