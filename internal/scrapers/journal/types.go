package journal

import (
	"net/http"
	"strings"
)

// names of the cookies the portal uses to identify a session, in the order
// they are sent back
const (
	CookieSessionId = "SESSION_ID"
	CookieCurrUch   = "CURR_UCH"
	CookieRegion    = "REGION"
	CookieUch       = "UCH"
	CookieUsername  = "USERNAME"
)

var CookieNames = []string{
	CookieSessionId,
	CookieCurrUch,
	CookieRegion,
	CookieUch,
	CookieUsername,
}

// Cookies maps session cookie names to their values.
type Cookies map[string]string

// NewCookies returns Cookies with every session cookie name present.
func NewCookies() Cookies {
	cookies := make(Cookies, len(CookieNames))
	for _, name := range CookieNames {
		cookies[name] = ""
	}
	return cookies
}

// Header renders the value of a `Cookie` header carrying every session
// cookie, missing values are sent empty.
func (c Cookies) Header() string {
	segments := make([]string, len(CookieNames))
	for i, name := range CookieNames {
		segments[i] = name + "=" + c[name]
	}
	return strings.Join(segments, "; ")
}

// cookiesFromResponse picks the session cookies out of a response's
// `Set-Cookie` headers, names that were not set are absent from the result.
func cookiesFromResponse(received []*http.Cookie) Cookies {
	cookies := Cookies{}
	for _, cookie := range received {
		for _, name := range CookieNames {
			if cookie.Name == name {
				cookies[name] = cookie.Value
			}
		}
	}
	return cookies
}

// Subject is one row of the grades table.
type Subject struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AverageMark float64  `json:"avg_mark"`
	Marks       []string `json:"marks"`
}
