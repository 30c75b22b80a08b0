package journal

import (
	"fmt"
	"journal-backend/lib/htmlutil"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// subject ids are derived from the document so reparsing the same page yields
// the same ids
var subjectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(DefaultBaseUrl+journalEndpoint))

var averageRegex = regexp.MustCompile(`\d+[.,]\d+`)

// ParseMarks extracts the subjects from a decoded grades page. The grades table
// is the table directly containing a cell accepted by markers.IsTableHeader, if
// there is none the result is empty. Rows that do not describe a subject are
// skipped.
func ParseMarks(document string, markers Markers) []Subject {
	markers = markers.WithDefaults()
	subjects := []Subject{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return subjects
	}

	table, header := findGradesTable(doc, markers)
	if table == nil {
		return subjects
	}

	rows := table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		// rows of tables nested inside a cell belong to that table
		return row.Closest("table").IsSelection(table) && !row.IsSelection(header)
	})
	rows.Each(func(i int, row *goquery.Selection) {
		subject, ok := parseRow(row)
		if !ok {
			return
		}
		subject.ID = uuid.NewSHA1(subjectNamespace, []byte(fmt.Sprintf("%d:%s", i, subject.Name))).String()
		subjects = append(subjects, subject)
	})

	return subjects
}

// findGradesTable returns the grades table and its header row, both are nil
// if the document has none.
func findGradesTable(doc *goquery.Document, markers Markers) (table, header *goquery.Selection) {
	doc.Find("td, th").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		// a layout cell wrapping the grades table contains the header text too
		if cell.Find("table").Length() > 0 {
			return true
		}
		if !markers.IsTableHeader(htmlutil.CleanText(cell)) {
			return true
		}
		closest := cell.Closest("table")
		if closest.Length() == 0 {
			return true
		}
		table = closest
		header = cell.Closest("tr")
		return false
	})
	return table, header
}

func parseRow(row *goquery.Selection) (Subject, bool) {
	cells := row.ChildrenFiltered("td, th")
	if cells.Length() < 3 {
		return Subject{}, false
	}

	name := htmlutil.CleanText(cells.Eq(0))
	marks := strings.Fields(htmlutil.CleanText(cells.Eq(1)))
	if name == "" || len(marks) == 0 {
		return Subject{}, false
	}

	return Subject{
		Name:        name,
		AverageMark: parseAverage(htmlutil.CleanText(cells.Eq(2))),
		Marks:       marks,
	}, true
}

// parseAverage reads the first decimal number in text, accepting a comma as
// the decimal separator. It returns 0 when there is none.
func parseAverage(text string) float64 {
	match := averageRegex.FindString(text)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return value
}
