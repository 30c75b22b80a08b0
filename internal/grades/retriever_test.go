package grades

import (
	"context"
	"errors"
	"journal-backend/internal/components/chrono"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/components/telemetry/telemetrytest"
	"journal-backend/internal/scrapers/journal"
	"journal-backend/internal/scrapers/journal/journaltest"
	"journal-backend/internal/session"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var ignoreSubjectId = cmpopts.IgnoreFields(journal.Subject{}, "ID")

var expectedSubjects = []journal.Subject{
	{Name: "Математика", AverageMark: 4.25, Marks: []string{"5", "4", "5", "3"}},
	{Name: "Основы философии", AverageMark: 4, Marks: []string{"4"}},
	{Name: "Физическая культура", AverageMark: 0, Marks: []string{"зач", "н"}},
	{Name: "История", AverageMark: 5, Marks: []string{"5", "5"}},
}

type fixture struct {
	portal    *journaltest.Portal
	store     kv.Store
	clock     *chrono.FixedTime
	tel       *telemetrytest.Recorder
	session   *session.Session
	retriever *Retriever
}

func newFixture(t *testing.T, store kv.Store, opts journal.ClientOptions) fixture {
	t.Helper()

	portal := journaltest.NewPortal(t)
	tel := telemetrytest.NewRecorder()
	opts.BaseUrl = portal.URL()
	client, err := journal.NewClient(opts, tel)
	require.NoError(t, err)

	clock := chrono.NewFixedTime(time.Date(2024, time.October, 1, 9, 0, 0, 0, time.UTC))
	sess := session.NewSession(client, store, clock, tel)
	return fixture{
		portal:    portal,
		store:     store,
		clock:     clock,
		tel:       tel,
		session:   sess,
		retriever: NewRetriever(client, sess, store, tel),
	}
}

func (f fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Login(context.Background(), "student", "secret"))
}

func (f fixture) journalRequests() int {
	count := 0
	for _, req := range f.portal.Requests() {
		if req.Path == journaltest.JournalPath {
			count++
		}
	}
	return count
}

func TestFetchSubjects(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)
	require.Empty(t, cmp.Diff(expectedSubjects, subjects, ignoreSubjectId))

	require.Empty(t, cmp.Diff(subjects, f.retriever.Cached(ctx)))
	require.Equal(t, []int64{4}, f.tel.Counts(report_retriever_subject_count))
	require.True(t, f.session.IsValid(ctx))
}

func TestFetchSubjectsInvalidSession(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	ctx := context.Background()

	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusAuthError, status)
	require.NotNil(t, subjects)
	require.Empty(t, subjects)
	require.Zero(t, f.journalRequests())
}

func TestFetchSubjectsExpiredSession(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	_, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)

	f.clock.Advance(session.Lifetime)
	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusAuthError, status)
	require.Empty(t, cmp.Diff(expectedSubjects, subjects, ignoreSubjectId))
	require.Equal(t, 1, f.journalRequests())

	_, ok := f.session.SavedCredentials(ctx)
	require.False(t, ok)
}

func TestFetchSubjectsSessionRejected(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	_, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)

	// the portal dropped the session on its side
	f.portal.Update(func(s *journaltest.State) {
		s.Cookies = map[string]string{journal.CookieSessionId: "another"}
	})
	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusAuthError, status)
	require.Empty(t, cmp.Diff(expectedSubjects, subjects, ignoreSubjectId))
	require.False(t, f.session.IsValid(ctx))
	require.True(t, f.tel.Has(telemetrytest.KindWarning, report_retriever_fetch_subjects))
}

func TestFetchSubjectsPageWithoutTable(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	f.portal.Update(func(s *journaltest.State) {
		s.JournalPage = "<html><body>Технические работы</body></html>"
	})

	subjects, status := f.retriever.FetchSubjects(context.Background())
	require.Equal(t, StatusAuthError, status)
	require.Empty(t, subjects)
	require.False(t, f.session.IsValid(context.Background()))
}

func TestFetchSubjectsServerError(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	_, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)

	f.portal.Update(func(s *journaltest.State) {
		s.JournalStatus = http.StatusInternalServerError
	})
	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusServerError, status)
	require.Empty(t, cmp.Diff(expectedSubjects, subjects, ignoreSubjectId))
	require.True(t, f.session.IsValid(ctx))
	require.True(t, f.tel.Has(telemetrytest.KindBroken, report_retriever_fetch_subjects))
}

func TestFetchSubjectsTimeout(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{Timeout: 50 * time.Millisecond})
	f.login(t)
	f.portal.Update(func(s *journaltest.State) {
		s.Delay = time.Second
	})

	subjects, status := f.retriever.FetchSubjects(context.Background())
	require.Equal(t, StatusTimeout, status)
	require.NotNil(t, subjects)
	require.True(t, f.session.IsValid(context.Background()))
}

func TestFetchSubjectsUnreachable(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	f.portal.Server.Close()

	_, status := f.retriever.FetchSubjects(context.Background())
	require.Equal(t, StatusGeneralError, status)
	require.True(t, f.session.IsValid(context.Background()))
}

func TestFetchSubjectsRefreshesCookies(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	f.portal.Update(func(s *journaltest.State) {
		s.JournalCookies = map[string]string{journal.CookieRegion: "57"}
	})
	ctx := context.Background()

	_, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)
	require.Contains(t, f.session.AuthHeader(ctx).Get("Cookie"), "REGION=57")
}

func TestFetchSubjectsOverwritesCache(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	_, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)

	f.portal.Update(func(s *journaltest.State) {
		s.JournalPage = journaltest.GradesTable([3]string{"Химия", "3 4", "3,50"})
	})
	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)

	expected := []journal.Subject{{Name: "Химия", AverageMark: 3.5, Marks: []string{"3", "4"}}}
	require.Empty(t, cmp.Diff(expected, subjects, ignoreSubjectId))
	require.Empty(t, cmp.Diff(expected, f.retriever.Cached(ctx), ignoreSubjectId))
}

type failingCacheStore struct {
	*kv.MemoryStore
}

func (s failingCacheStore) Set(ctx context.Context, key, value string) error {
	if key == namespace+"."+keySavedSubject {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestFetchSubjectsCacheWriteFailure(t *testing.T) {
	f := newFixture(t, failingCacheStore{kv.NewMemoryStore()}, journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	subjects, status := f.retriever.FetchSubjects(ctx)
	require.Equal(t, StatusSuccess, status)
	require.Len(t, subjects, len(expectedSubjects))
	require.Empty(t, f.retriever.Cached(ctx))
	require.True(t, f.tel.Has(telemetrytest.KindBroken, report_retriever_cache))
}

func TestFetchSubjectsCorruptCache(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "grades.saved_subjects", "{not json"))
	f := newFixture(t, store, journal.ClientOptions{})

	subjects, status := f.retriever.FetchSubjects(context.Background())
	require.Equal(t, StatusAuthError, status)
	require.NotNil(t, subjects)
	require.Empty(t, subjects)
	require.True(t, f.tel.Has(telemetrytest.KindBroken, report_retriever_cache))
}

func TestFetchSubjectsConcurrent(t *testing.T) {
	f := newFixture(t, kv.NewMemoryStore(), journal.ClientOptions{})
	f.login(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	statuses := make([]FetchStatus, 8)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, statuses[i] = f.retriever.FetchSubjects(ctx)
		}(i)
	}
	wg.Wait()

	for _, status := range statuses {
		require.Equal(t, StatusSuccess, status)
	}
	require.Equal(t, len(statuses), f.journalRequests())
	require.Empty(t, cmp.Diff(expectedSubjects, f.retriever.Cached(ctx), ignoreSubjectId))
}

func TestFetchStatusMessage(t *testing.T) {
	require.Empty(t, StatusSuccess.Message())
	require.Equal(t, "Сессия истекла. Нужно войти заново.", StatusAuthError.Message())
	require.Equal(t, "Сервер не отвечает (таймаут).", StatusTimeout.Message())
	require.Equal(t, "Ошибка сервера.", StatusServerError.Message())
	require.Equal(t, "Не удалось загрузить данные.", StatusGeneralError.Message())
	require.Equal(t, "timeout", StatusTimeout.String())
}
