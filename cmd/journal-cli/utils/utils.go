package utils

import (
	"fmt"
	"journal-backend/internal/scrapers/journal"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// SubjectsTable renders one row per subject: its name, the average with two
// decimals and the marks in document order.
func SubjectsTable(t table.Writer, subjects []journal.Subject) {
	t.AppendHeader(table.Row{"Дисциплина", "Средний", "Оценки"})
	for _, s := range subjects {
		t.AppendRow(table.Row{
			s.Name,
			fmt.Sprintf("%.2f", s.AverageMark),
			strings.Join(s.Marks, "  "),
		})
	}
}
