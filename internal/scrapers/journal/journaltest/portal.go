// Package journaltest provides a fake of the journal portal for tests. It
// speaks the same wire format: windows-1251 bodies, SHA-1 password digests and
// session cookies set on login.
package journaltest

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"journal-backend/lib/textutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	_ "embed"
)

//go:embed testdata/journal.html
var JournalPage string

//go:embed testdata/login_success.html
var LoginSuccessPage string

//go:embed testdata/login_required.html
var LoginRequiredPage string

// LoginFailedPage is what the portal answers to a wrong password: the login
// form again, without a greeting.
const LoginFailedPage = `<html><body><p>Неверное имя пользователя или пароль</p>
<form method="post"><input name="username"><input name="userpass"></form></body></html>`

const (
	LoginPath   = "/region_pou_secured/region.cgi/login"
	JournalPath = "/region_pou_secured/region.cgi/journal_och"
)

// State is what the fake portal answers with. Status fields left at 0 mean
// the portal behaves normally.
type State struct {
	Username string
	Password string

	// Cookies are set on a successful login, SESSION_ID is also what the
	// grades page checks.
	Cookies map[string]string

	LoginStatus   int
	JournalStatus int
	JournalPage   string

	// JournalCookies are set on every grades page response.
	JournalCookies map[string]string

	// Delay holds every response back, the request context still aborts it.
	Delay time.Duration
}

// Request is a request the fake portal received.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

// Form decodes the request body, keys and values are raw windows-1251.
func (r Request) Form() url.Values {
	values, _ := url.ParseQuery(r.Body)
	return values
}

type Portal struct {
	Server *httptest.Server

	mutex    sync.Mutex
	state    State
	requests []Request
}

// NewPortal starts a fake portal accepting username "student" with password
// "secret", it is closed when the test ends.
func NewPortal(t testing.TB) *Portal {
	p := &Portal{
		state: State{
			Username: "student",
			Password: "secret",
			Cookies: map[string]string{
				"SESSION_ID": "b1946ac92492d2347c6235b4d2611184",
				"CURR_UCH":   "1207",
				"REGION":     "56",
				"UCH":        "1207",
				"USERNAME":   "student",
			},
			JournalPage: JournalPage,
		},
	}
	p.Server = httptest.NewServer(http.HandlerFunc(p.serveHTTP))
	t.Cleanup(p.Server.Close)
	return p
}

func (p *Portal) URL() string {
	return p.Server.URL
}

// Update changes what the portal answers with.
func (p *Portal) Update(fn func(s *State)) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	fn(&p.state)
}

func (p *Portal) Requests() []Request {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]Request(nil), p.requests...)
}

func (p *Portal) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	p.mutex.Lock()
	p.requests = append(p.requests, Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     string(body),
	})
	state := p.state
	p.mutex.Unlock()

	if state.Delay > 0 {
		select {
		case <-time.After(state.Delay):
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == LoginPath:
		p.login(w, state, string(body))
	case r.Method == http.MethodGet && r.URL.Path == JournalPath:
		p.journal(w, r, state)
	default:
		http.NotFound(w, r)
	}
}

func digest(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func writePage(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=windows-1251")
	w.WriteHeader(status)
	w.Write(textutil.EncodeWindows1251(page))
}

func setCookies(w http.ResponseWriter, cookies map[string]string) {
	for name, value := range cookies {
		http.SetCookie(w, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
}

func (p *Portal) login(w http.ResponseWriter, state State, body string) {
	if state.LoginStatus != 0 {
		writePage(w, state.LoginStatus, "<html><body>Internal Server Error</body></html>")
		return
	}

	form, err := url.ParseQuery(body)
	if err != nil {
		writePage(w, http.StatusOK, LoginFailedPage)
		return
	}
	button := string(textutil.EncodeWindows1251("Вход"))
	username := textutil.DecodeWindows1251([]byte(form.Get("username")))
	if form.Get(button) != button ||
		username != state.Username ||
		form.Get("userpass") != digest(state.Password) {
		writePage(w, http.StatusOK, LoginFailedPage)
		return
	}

	setCookies(w, state.Cookies)
	writePage(w, http.StatusOK, LoginSuccessPage)
}

func (p *Portal) journal(w http.ResponseWriter, r *http.Request, state State) {
	if state.JournalStatus != 0 {
		writePage(w, state.JournalStatus, "<html><body>Bad Gateway</body></html>")
		return
	}

	session, err := r.Cookie("SESSION_ID")
	if err != nil || session.Value == "" || session.Value != state.Cookies["SESSION_ID"] {
		writePage(w, http.StatusOK, LoginRequiredPage)
		return
	}

	setCookies(w, state.JournalCookies)
	writePage(w, http.StatusOK, state.JournalPage)
}

// GradesTable renders a grades page holding one row per entry of rows, each
// row being the subject name, the marks and the average cell.
func GradesTable(rows ...[3]string) string {
	var out strings.Builder
	out.WriteString(`<html><body><table><tr><td class="header">Дисциплина</td><td class="header">Оценки</td><td class="header">Средний балл</td></tr>`)
	for _, row := range rows {
		out.WriteString("<tr>")
		for _, cell := range row {
			out.WriteString("<td>" + cell + "</td>")
		}
		out.WriteString("</tr>")
	}
	out.WriteString("</table></body></html>")
	return out.String()
}
