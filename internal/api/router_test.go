package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edkuperman/cronzimus/internal/db"
	"github.com/edkuperman/cronzimus/internal/job"
	"github.com/edkuperman/cronzimus/internal/metrics"
	"github.com/edkuperman/cronzimus/internal/schedule"
	"github.com/edkuperman/cronzimus/internal/scheduler"
	"github.com/edkuperman/cronzimus/internal/trigger"
)

type fakeScheduler struct {
	running bool
	entries []scheduler.EntryInfo
}

func (f fakeScheduler) Running() bool                  { return f.running }
func (f fakeScheduler) Entries() []scheduler.EntryInfo { return f.entries }
func (f fakeScheduler) Entry(id string) (scheduler.EntryInfo, bool) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, true
		}
	}
	return scheduler.EntryInfo{}, false
}

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	// Health does not depend on the scheduler at all.
	router := NewRouter(NewHandlers(nil), zerolog.Nop())

	rec := do(t, router, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"running"}`, rec.Body.String())
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandlers(nil), zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchedulerEndpoints(t *testing.T) {
	t.Parallel()

	next := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := fakeScheduler{
		running: true,
		entries: []scheduler.EntryInfo{
			{ID: "a", TriggerKind: trigger.KindInterval, Trigger: "interval[5s]", Args: 1, NextRun: &next},
			{ID: "b", TriggerKind: trigger.KindCron, Trigger: "cron[hour='3']"},
		},
	}
	router := NewRouter(NewHandlers(fake), zerolog.Nop())

	rec := do(t, router, "/api/scheduler")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"running":true,"jobs":2}`, rec.Body.String())

	rec = do(t, router, "/api/scheduler/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []scheduler.EntryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	require.NotNil(t, list[0].NextRun)
	assert.True(t, next.Equal(*list[0].NextRun))
	assert.Nil(t, list[1].NextRun)

	rec = do(t, router, "/api/scheduler/jobs/b")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trigger_kind":"cron"`)

	rec = do(t, router, "/api/scheduler/jobs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"job \"missing\" not found"}`, rec.Body.String())
}

func TestSchedulerEndpoints_NoScheduler(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandlers(nil), zerolog.Nop())

	assert.JSONEq(t, `{"running":false,"jobs":0}`, do(t, router, "/api/scheduler").Body.String())
	assert.JSONEq(t, `[]`, do(t, router, "/api/scheduler/jobs").Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, router, "/api/scheduler/jobs/x").Code)
}

func TestSchedulerAPIDisabled(t *testing.T) {
	t.Parallel()

	router := NewRouter(NewHandlers(fakeScheduler{}), zerolog.Nop(), WithSchedulerAPI(false))
	assert.Equal(t, http.StatusNotFound, do(t, router, "/api/scheduler").Code)
	assert.Equal(t, http.StatusOK, do(t, router, "/api/health").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.SetRegistered(3)

	router := NewRouter(NewHandlers(nil), zerolog.Nop(), WithMetricsHandler(m.Handler()))
	rec := do(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cronzimus_jobs_registered 3")

	bare := NewRouter(NewHandlers(nil), zerolog.Nop())
	assert.Equal(t, http.StatusNotFound, do(t, bare, "/metrics").Code)
}

func TestWithRealScheduler(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, ...any) error { return nil }
	reg, err := schedule.NewFromDeclarations([]job.Declaration{
		{Func: noop, Kind: trigger.KindInterval, Params: trigger.Params{"hours": 1}, ID: "hourly"},
	})
	require.NoError(t, err)

	s, err := scheduler.Start(context.Background(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	router := NewRouter(NewHandlers(s), zerolog.Nop())

	rec := do(t, router, "/api/scheduler/jobs/hourly")
	require.Equal(t, http.StatusOK, rec.Code)

	var info scheduler.EntryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "hourly", info.ID)
	assert.Equal(t, trigger.KindInterval, info.TriggerKind)
	require.NotNil(t, info.NextRun)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *info.NextRun, time.Minute)
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := NewRouter(NewHandlers(nil), zerolog.Nop(),
		WithReadiness(func(context.Context) error { return nil }))
	rec := do(t, ok, "/api/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	failing := NewRouter(NewHandlers(nil), zerolog.Nop(),
		WithReadiness(db.Healthcheck(db.New(nil))))
	rec = do(t, failing, "/api/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"db: not connected"}`, rec.Body.String())

	// Health stays green whatever readiness reports.
	assert.Equal(t, http.StatusOK, do(t, failing, "/api/health").Code)
}
