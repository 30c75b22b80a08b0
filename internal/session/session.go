// Package session owns the login state of the journal portal: it logs in,
// persists the session cookies and decides whether the stored session can
// still be used.
package session

import (
	"context"
	"errors"
	"fmt"
	"journal-backend/internal/components/assert"
	"journal-backend/internal/components/chrono"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/components/telemetry"
	"journal-backend/internal/scrapers/journal"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("journal-backend/session")

// Lifetime is how long the portal keeps a session alive after login.
const Lifetime = 7 * 24 * time.Hour

const (
	report_session_login   = "session.login"
	report_session_logout  = "session.logout"
	report_session_state   = "session.state"
	report_session_cookies = "session.cookies"
)

type Session struct {
	client *journal.Client
	store  Store
	time   chrono.TimeAPI
	tel    telemetry.API
}

func NewSession(client *journal.Client, store kv.Store, timeAPI chrono.TimeAPI, tel telemetry.API) *Session {
	assert.NotNil(client, "journal client")
	assert.NotNil(store, "kv store")
	assert.NotNil(timeAPI, "time")
	assert.NotNil(tel, "telemetry")

	return &Session{
		client: client,
		store:  NewStore(store),
		time:   timeAPI,
		tel:    telemetry.NewScopedAPI("session", tel),
	}
}

// State reads the stored session state.
func (s *Session) State(ctx context.Context) (State, error) {
	return s.store.State(ctx)
}

// IsValid reports whether a login happened less than Lifetime ago and was not
// logged out since. A state that cannot be read counts as logged out.
func (s *Session) IsValid(ctx context.Context) bool {
	state, err := s.store.State(ctx)
	if err != nil {
		s.tel.ReportBroken(report_session_state, err)
		return false
	}
	return state.Valid(s.time.Now())
}

// Cookies returns the stored session cookies.
func (s *Session) Cookies(ctx context.Context) (journal.Cookies, error) {
	return s.store.Cookies(ctx)
}

// AuthHeader returns the headers authenticating a request to the portal.
// Cookies that cannot be read are sent empty, the portal then answers with
// its login prompt.
func (s *Session) AuthHeader(ctx context.Context) http.Header {
	cookies, err := s.store.Cookies(ctx)
	if err != nil {
		s.tel.ReportBroken(report_session_cookies, err)
		cookies = journal.NewCookies()
	}
	header := http.Header{}
	header.Set("Cookie", cookies.Header())
	return header
}

// Login submits the credentials and persists the session on success. Any
// failure is returned as an *AuthError and leaves the stored session as it
// was.
func (s *Session) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "session:Login")
	defer span.End()

	cookies, err := s.client.Login(ctx, username, password)
	if errors.Is(err, journal.ErrInvalidCredentials) {
		span.SetStatus(codes.Error, "credentials rejected")
		return &AuthError{Kind: AuthFailed, Message: "Ошибка авторизации"}
	}
	var statusErr *journal.StatusError
	if errors.As(err, &statusErr) {
		span.SetStatus(codes.Error, statusErr.Error())
		return &AuthError{
			Kind:    AuthServerError,
			Message: fmt.Sprintf("Ошибка сервера: %d", statusErr.Code),
			Err:     err,
		}
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &AuthError{Kind: AuthServerError, Message: "Сервер недоступен", Err: err}
	}

	err = s.store.SaveLogin(ctx, Credentials{Username: username, Password: password}, cookies, s.time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist session")
		s.tel.ReportBroken(report_session_login, err)
		return &AuthError{Kind: AuthServerError, Message: "Не удалось сохранить сессию", Err: err}
	}

	s.tel.ReportDebug("logged in", username)
	return nil
}

// Logout forgets the session and the saved credentials. It cannot fail,
// storage errors are only reported.
func (s *Session) Logout(ctx context.Context) {
	err := s.store.Clear(ctx)
	if err != nil {
		s.tel.ReportBroken(report_session_logout, err)
		return
	}
	s.tel.ReportDebug("logged out")
}

// SavedCredentials returns the stored credentials, the bool is false unless
// both the username and the password are set.
func (s *Session) SavedCredentials(ctx context.Context) (Credentials, bool) {
	creds, err := s.store.Credentials(ctx)
	if err != nil {
		s.tel.ReportBroken(report_session_state, err)
		return Credentials{}, false
	}
	if !creds.Complete() {
		return Credentials{}, false
	}
	return creds, true
}

// RefreshCookies persists the session cookies an authenticated response set.
func (s *Session) RefreshCookies(ctx context.Context, cookies journal.Cookies) {
	if len(cookies) == 0 {
		return
	}
	err := s.store.SaveCookies(ctx, cookies)
	if err != nil {
		s.tel.ReportBroken(report_session_cookies, err)
	}
}
