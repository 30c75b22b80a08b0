package journal

import (
	"journal-backend/internal/scrapers/journal/journaltest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var ignoreSubjectId = cmpopts.IgnoreFields(Subject{}, "ID")

var gradesTable = journaltest.GradesTable

func TestParseMarksPage(t *testing.T) {
	subjects := ParseMarks(journaltest.JournalPage, DefaultMarkers())

	expected := []Subject{
		{Name: "Математика", AverageMark: 4.25, Marks: []string{"5", "4", "5", "3"}},
		{Name: "Основы философии", AverageMark: 4, Marks: []string{"4"}},
		{Name: "Физическая культура", AverageMark: 0, Marks: []string{"зач", "н"}},
		{Name: "История", AverageMark: 5, Marks: []string{"5", "5"}},
	}
	diff := cmp.Diff(expected, subjects, ignoreSubjectId)
	require.Empty(t, diff)

	ids := map[string]bool{}
	for _, s := range subjects {
		require.NotEmpty(t, s.ID)
		ids[s.ID] = true
	}
	require.Len(t, ids, len(subjects))
}

func TestParseMarksSkipsIncompleteRows(t *testing.T) {
	document := gradesTable(
		[3]string{"Math", "8 9 7", "85.50"},
		[3]string{"", "", "90.0"},
	)

	subjects := ParseMarks(document, DefaultMarkers())
	diff := cmp.Diff([]Subject{
		{Name: "Math", AverageMark: 85.5, Marks: []string{"8", "9", "7"}},
	}, subjects, ignoreSubjectId)
	require.Empty(t, diff)
}

func TestParseMarksKeepsSubjectsNamedLikeHeader(t *testing.T) {
	document := gradesTable(
		[3]string{"Математика", "5 4", "4.50"},
		[3]string{"Дисциплина по выбору: Экономика", "5 5", "5.00"},
		[3]string{"Дисциплина", "3", "3.00"},
	)

	subjects := ParseMarks(document, DefaultMarkers())
	diff := cmp.Diff([]Subject{
		{Name: "Математика", AverageMark: 4.5, Marks: []string{"5", "4"}},
		{Name: "Дисциплина по выбору: Экономика", AverageMark: 5, Marks: []string{"5", "5"}},
		{Name: "Дисциплина", AverageMark: 3, Marks: []string{"3"}},
	}, subjects, ignoreSubjectId)
	require.Empty(t, diff)
}

func TestParseMarksMalformedRows(t *testing.T) {
	document := `<html><body><table>
		<tr><th>Дисциплина</th><th>Оценки</th><th>Средний балл</th></tr>
		<tr><td>only one cell</td></tr>
		<tr><td>Химия</td><td>5</td></tr>
		<tr><td>Physics</td><td>4 4</td><td>4.0</td><td>extra</td></tr>
		<tr><td>Marks only</td><td>   </td><td>3.5</td></tr>
		<tr><td>   </td><td>5</td><td>5.0</td></tr>
	</table></body></html>`

	subjects := ParseMarks(document, DefaultMarkers())
	diff := cmp.Diff([]Subject{
		{Name: "Physics", AverageMark: 4, Marks: []string{"4", "4"}},
	}, subjects, ignoreSubjectId)
	require.Empty(t, diff)
}

func TestParseMarksWithoutTable(t *testing.T) {
	for _, document := range []string{
		"",
		"<html><body><p>Дисциплина</p></body></html>",
		gradesTable(),
		"<html><body><table><tr><td>Math</td><td>5</td><td>5.0</td></tr></table></body></html>",
	} {
		subjects := ParseMarks(document, DefaultMarkers())
		require.NotNil(t, subjects)
		require.Empty(t, subjects)
	}
}

func TestParseAverage(t *testing.T) {
	table := []struct {
		input    string
		expected float64
	}{
		{input: "93,25 балла", expected: 93.25},
		{input: "85.50", expected: 85.5},
		{input: "средний: 4.5 (из 5.0)", expected: 4.5},
		{input: "нет оценок", expected: 0},
		{input: "5", expected: 0},
		{input: "", expected: 0},
	}

	for _, row := range table {
		require.Equal(t, row.expected, parseAverage(row.input), row.input)
	}
}

func TestParseMarksIsIdempotent(t *testing.T) {
	first := ParseMarks(journaltest.JournalPage, DefaultMarkers())
	second := ParseMarks(journaltest.JournalPage, DefaultMarkers())
	require.Empty(t, cmp.Diff(first, second))
}

func TestParseMarksCustomLocator(t *testing.T) {
	document := `<html><body><table>
		<tr><td>Subject</td><td>Marks</td><td>Average</td></tr>
		<tr><td>Math</td><td>5 5</td><td>5.0</td></tr>
	</table></body></html>`

	require.Empty(t, ParseMarks(document, DefaultMarkers()))

	subjects := ParseMarks(document, Markers{IsTableHeader: Contains("Subject")})
	diff := cmp.Diff([]Subject{
		{Name: "Math", AverageMark: 5, Marks: []string{"5", "5"}},
	}, subjects, ignoreSubjectId)
	require.Empty(t, diff)
}
