// Package service is what callers use: it wires the portal client, the session
// and the grade retriever over one kv.Store.
package service

import (
	"context"
	"journal-backend/internal/components/assert"
	"journal-backend/internal/components/chrono"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/components/telemetry"
	"journal-backend/internal/grades"
	"journal-backend/internal/scrapers/journal"
	"journal-backend/internal/session"
)

const report_journal_resume = "journal.resume"

type Journal struct {
	client    *journal.Client
	session   *session.Session
	retriever *grades.Retriever
	tel       telemetry.API
}

func NewJournal(opts journal.ClientOptions, store kv.Store, timeAPI chrono.TimeAPI, tel telemetry.API) (*Journal, error) {
	assert.NotNil(store, "kv store")
	assert.NotNil(timeAPI, "time")
	assert.NotNil(tel, "telemetry")

	client, err := journal.NewClient(opts, tel)
	if err != nil {
		return nil, err
	}
	sess := session.NewSession(client, store, timeAPI, tel)

	return &Journal{
		client:    client,
		session:   sess,
		retriever: grades.NewRetriever(client, sess, store, tel),
		tel:       telemetry.NewScopedAPI("journal", tel),
	}, nil
}

// Client exposes the portal client, mostly so binaries can instrument it.
func (j *Journal) Client() *journal.Client {
	return j.client
}

// Login logs in and persists the session, errors are *session.AuthError.
func (j *Journal) Login(ctx context.Context, username, password string) error {
	return j.session.Login(ctx, username, password)
}

func (j *Journal) Logout(ctx context.Context) {
	j.session.Logout(ctx)
}

// FetchSubjects downloads the current grades, see grades.Retriever.FetchSubjects.
func (j *Journal) FetchSubjects(ctx context.Context) ([]journal.Subject, grades.FetchStatus) {
	return j.retriever.FetchSubjects(ctx)
}

// Cached returns the subjects of the last successful fetch.
func (j *Journal) Cached(ctx context.Context) []journal.Subject {
	return j.retriever.Cached(ctx)
}

func (j *Journal) SavedCredentials(ctx context.Context) (session.Credentials, bool) {
	return j.session.SavedCredentials(ctx)
}

func (j *Journal) IsLoggedIn(ctx context.Context) bool {
	return j.session.IsValid(ctx)
}

func (j *Journal) State(ctx context.Context) (session.State, error) {
	return j.session.State(ctx)
}

// Resume makes sure there is a usable session at start-up: a valid session is
// kept as is, otherwise the saved credentials (if any) are used to log in
// again. It returns whether a usable session exists afterwards and the
// *session.AuthError of a failed re-login.
func (j *Journal) Resume(ctx context.Context) (bool, error) {
	if j.session.IsValid(ctx) {
		return true, nil
	}

	creds, ok := j.session.SavedCredentials(ctx)
	if !ok {
		return false, nil
	}

	err := j.session.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		j.tel.ReportWarning(report_journal_resume, err)
		return false, err
	}
	return true, nil
}
