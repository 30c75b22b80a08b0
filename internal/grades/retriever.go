// Package grades downloads the grades page with the stored session, parses it
// and keeps the last successful result around for when the portal cannot be
// reached.
package grades

import (
	"context"
	"errors"
	"journal-backend/internal/components/assert"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/components/telemetry"
	"journal-backend/internal/scrapers/journal"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("journal-backend/grades")

const (
	report_retriever_fetch_subjects = "retriever.fetch-subjects"
	report_retriever_cache          = "retriever.cache"
	report_retriever_subject_count  = "retriever.subject-count"
)

// Session is the part of session.Session the retriever depends on.
type Session interface {
	IsValid(ctx context.Context) bool
	AuthHeader(ctx context.Context) http.Header
	Logout(ctx context.Context)
	RefreshCookies(ctx context.Context, cookies journal.Cookies)
}

// Portal is the part of journal.Client the retriever depends on.
type Portal interface {
	Journal(ctx context.Context, cookieHeader string) (journal.Page, error)
	Markers() journal.Markers
}

type Retriever struct {
	portal  Portal
	session Session
	cache   Cache
	tel     telemetry.API

	// held for a whole fetch so the cache read and the cache write of one
	// call are never interleaved with another call's
	mutex sync.Mutex
}

func NewRetriever(portal Portal, session Session, store kv.Store, tel telemetry.API) *Retriever {
	assert.NotNil(portal, "portal")
	assert.NotNil(session, "session")
	assert.NotNil(store, "kv store")
	assert.NotNil(tel, "telemetry")

	return &Retriever{
		portal:  portal,
		session: session,
		cache:   NewCache(store),
		tel:     telemetry.NewScopedAPI("grades", tel),
	}
}

func (r *Retriever) loadCache(ctx context.Context) []journal.Subject {
	cached, err := r.cache.Load(ctx)
	if err != nil {
		r.tel.ReportBroken(report_retriever_cache, err)
	}
	return cached
}

// Cached returns the subjects of the last successful fetch without touching
// the network.
func (r *Retriever) Cached(ctx context.Context) []journal.Subject {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.loadCache(ctx)
}

// FetchSubjects downloads and parses the grades page. On anything but
// StatusSuccess the cached subjects are returned instead, an expired or
// rejected session is logged out. The returned slice is never nil.
func (r *Retriever) FetchSubjects(ctx context.Context) ([]journal.Subject, FetchStatus) {
	ctx, span := tracer.Start(ctx, "retriever:FetchSubjects")
	defer span.End()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	cached := r.loadCache(ctx)

	if !r.session.IsValid(ctx) {
		r.tel.ReportDebug("session expired, skipping fetch")
		span.SetStatus(codes.Error, "session invalid")
		r.session.Logout(ctx)
		return cached, StatusAuthError
	}

	header := r.session.AuthHeader(ctx)
	page, err := r.portal.Journal(ctx, header.Get("Cookie"))
	var statusErr *journal.StatusError
	switch {
	case errors.As(err, &statusErr):
		span.SetStatus(codes.Error, statusErr.Error())
		r.tel.ReportBroken(report_retriever_fetch_subjects, err)
		return cached, StatusServerError
	case err != nil && journal.IsTimeout(err):
		span.SetStatus(codes.Error, "timed out")
		r.tel.ReportWarning(report_retriever_fetch_subjects, err)
		return cached, StatusTimeout
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		r.tel.ReportBroken(report_retriever_fetch_subjects, err)
		return cached, StatusGeneralError
	}

	if page.LoginRequired {
		r.tel.ReportWarning(report_retriever_fetch_subjects, "portal rejected the session")
		span.SetStatus(codes.Error, "session rejected")
		r.session.Logout(ctx)
		return cached, StatusAuthError
	}

	subjects := journal.ParseMarks(page.Body, r.portal.Markers())
	span.SetAttributes(attribute.Int("custom.subject_count", len(subjects)))
	r.tel.ReportCount(report_retriever_subject_count, int64(len(subjects)))

	r.session.RefreshCookies(ctx, page.Cookies)

	err = r.cache.Save(ctx, subjects)
	if err != nil {
		r.tel.ReportBroken(report_retriever_cache, err)
	}

	return subjects, StatusSuccess
}
