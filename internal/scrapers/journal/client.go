// client.go contains the HTTP side of the portal: submitting the login form and
// downloading the grades page. It does not persist anything.

package journal

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"journal-backend/internal/components/assert"
	"journal-backend/internal/components/telemetry"
	"journal-backend/lib/textutil"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("journal-backend/scrapers/journal")

const (
	report_client_login   = "client.login"
	report_client_journal = "client.journal"
)

const (
	DefaultBaseUrl   = "https://journal.uc.osu.ru"
	DefaultUserAgent = "Raspy/1.0 (iOS)"
	DefaultPeriodId  = "1744"

	loginEndpoint   = "/region_pou_secured/region.cgi/login"
	journalEndpoint = "/region_pou_secured/region.cgi/journal_och"
)

// ErrInvalidCredentials is returned when the portal answered the login form
// without greeting the user.
var ErrInvalidCredentials = errors.New("journal: invalid username or password")

// StatusError is returned when the portal answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("journal: unexpected status %s", e.Status)
}

// IsTimeout reports whether err is the result of a request timing out.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string

	// PeriodId selects the grading period shown by the grades page,
	// defaults to DefaultPeriodId.
	PeriodId string

	// Timeout bounds every request, 0 leaves requests unbounded since the
	// portal can take a very long time to answer.
	Timeout time.Duration

	// Markers has its unset predicates filled with DefaultMarkers.
	Markers Markers
}

type Client struct {
	Http *resty.Client

	markers  Markers
	periodId string
	tel      telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("journal_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.PeriodId == "" {
		opts.PeriodId = DefaultPeriodId
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("journal: parse base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimSuffix(opts.BaseUrl, "/"))
	// session cookies are persisted and replayed explicitly
	httpClient.SetCookieJar(nil)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		Http:     httpClient,
		markers:  opts.Markers.WithDefaults(),
		periodId: opts.PeriodId,
		tel:      tel,
	}, nil
}

// Markers returns the predicates the client was configured with.
func (c *Client) Markers() Markers {
	return c.markers
}

// PasswordDigest is the transform the portal expects in place of the
// password: a lowercase hex SHA-1 of it.
func PasswordDigest(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// the login form's submit button, «Вход»=«Вход», the portal rejects the form without it
var loginButtonField = textutil.EscapeFormValue1251("Вход") + "=" + textutil.EscapeFormValue1251("Вход")

// loginBody builds the login form. The username is percent-escaped as
// windows-1251 bytes instead of being sent raw, so a name containing '&', '='
// or Cyrillic letters still reaches the portal as one field in its own charset.
func loginBody(username, password string) string {
	return strings.Join([]string{
		"username=" + textutil.EscapeFormValue1251(username),
		"userpass=" + PasswordDigest(password),
		loginButtonField,
	}, "&")
}

// Login submits the login form and returns the session cookies the portal
// set. It returns ErrInvalidCredentials if the portal did not accept the
// credentials and a *StatusError on a non-2xx status.
func (c *Client) Login(ctx context.Context, username, password string) (Cookies, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(loginBody(username, password)).
		Post(loginEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login request: %w", err))
		return nil, fmt.Errorf("journal: login request: %w", err)
	}
	span.SetAttributes(attribute.Int("custom.status_code", res.StatusCode()))

	if !res.IsSuccess() {
		err := &StatusError{Code: res.StatusCode(), Status: res.Status()}
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportBroken(report_client_login, err)
		return nil, err
	}

	body := textutil.DecodeWindows1251(res.Body())
	if !c.markers.LoginSucceeded(body) {
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		c.tel.ReportWarning(report_client_login, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	return cookiesFromResponse(res.Cookies()), nil
}

// Page is a decoded grades page.
type Page struct {
	Body string

	// Cookies holds the session cookies the response refreshed, absent names
	// were not sent.
	Cookies Cookies

	// LoginRequired is set when the portal answered with its login prompt
	// instead of the grades table.
	LoginRequired bool
}

func (c *Client) journalUrl() string {
	return journalEndpoint + "?page=1&marks=1&compact=1&period_id=" + url.QueryEscape(c.periodId)
}

// Journal downloads the grades page using the given `Cookie` header value.
// It returns a *StatusError on a non-2xx status.
func (c *Client) Journal(ctx context.Context, cookieHeader string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:Journal")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Cookie", cookieHeader).
		Get(c.journalUrl())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch grades page")
		c.tel.ReportBroken(report_client_journal, fmt.Errorf("fetch: %w", err))
		return Page{}, fmt.Errorf("journal: fetch grades page: %w", err)
	}
	span.SetAttributes(attribute.Int("custom.status_code", res.StatusCode()))

	if !res.IsSuccess() {
		err := &StatusError{Code: res.StatusCode(), Status: res.Status()}
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportBroken(report_client_journal, err)
		return Page{}, err
	}

	body := textutil.DecodeWindows1251(res.Body())
	page := Page{
		Body:          body,
		Cookies:       cookiesFromResponse(res.Cookies()),
		LoginRequired: c.markers.LoginRequired(body),
	}
	if page.LoginRequired {
		span.AddEvent("portal asked to log in again")
	}
	return page, nil
}
