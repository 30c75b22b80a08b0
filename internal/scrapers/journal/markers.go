package journal

import "strings"

const (
	loginSucceededMarker = "Здравствуйте"
	loginRequiredMarker  = "необходимо пройти авторизацию"
	tableHeaderMarker    = "Дисциплина"
)

// Markers decide what a decoded page means. The portal answers 200 OK to
// almost everything, so page contents are the only signal.
type Markers struct {
	// LoginSucceeded reports whether the body returned by the login form
	// belongs to a logged in user.
	LoginSucceeded func(body string) bool

	// LoginRequired reports whether a grades page is actually the portal
	// asking to log in again.
	LoginRequired func(body string) bool

	// IsTableHeader reports whether the text of a table cell marks the grades table.
	IsTableHeader func(cell string) bool
}

// Contains returns a predicate matching text containing substr.
func Contains(substr string) func(string) bool {
	return func(text string) bool {
		return strings.Contains(text, substr)
	}
}

func DefaultMarkers() Markers {
	return Markers{
		LoginSucceeded: Contains(loginSucceededMarker),
		LoginRequired: func(body string) bool {
			return strings.Contains(body, loginRequiredMarker) ||
				!strings.Contains(body, tableHeaderMarker)
		},
		IsTableHeader: Contains(tableHeaderMarker),
	}
}

// WithDefaults fills every unset predicate with its default.
func (m Markers) WithDefaults() Markers {
	defaults := DefaultMarkers()
	if m.LoginSucceeded == nil {
		m.LoginSucceeded = defaults.LoginSucceeded
	}
	if m.LoginRequired == nil {
		m.LoginRequired = defaults.LoginRequired
	}
	if m.IsTableHeader == nil {
		m.IsTableHeader = defaults.IsTableHeader
	}
	return m
}
