package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
	"viksitkanpur/internal/session"
)

type stubFetcher struct {
	calls  atomic.Int32
	bundle gateway.Bundle
	feed   gateway.Result[json.RawMessage]
}

func (s *stubFetcher) FetchAll(context.Context, string) gateway.Bundle {
	s.calls.Add(1)
	return s.bundle
}

func (s *stubFetcher) RecentActivity(context.Context, string, int) gateway.Result[json.RawMessage] {
	return s.feed
}

func (s *stubFetcher) Notifications(context.Context, string, int) gateway.Result[json.RawMessage] {
	return s.feed
}

type memoryArchive struct {
	mu      sync.Mutex
	records []ArchiveRecord
}

func (a *memoryArchive) Save(_ context.Context, rec ArchiveRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *memoryArchive) History(_ context.Context, userID string, _ time.Time, _ int) ([]ArchiveRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []ArchiveRecord
	for _, r := range a.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type upperMachine struct{}

func (upperMachine) Translate(_ context.Context, text string, _ locale.Lang) string {
	return "HI:" + text
}

func liveSession() session.Session {
	return session.Session{
		ID:       "s1",
		Token:    "tok",
		UserID:   "u1",
		Role:     records.RoleDistrictMagistrate,
		Language: locale.English,
	}
}

func failingBundle() gateway.Bundle {
	b := gateway.Placeholder()
	b.Workers = gateway.Fail(&gateway.FetchError{Endpoint: gateway.PathWorkers, Kind: gateway.KindStatus, StatusCode: 500}, json.RawMessage(`[]`))
	return b
}

func TestSnapshot_PlaceholderWithoutToken(t *testing.T) {
	f := &stubFetcher{}
	l := New(Config{Fetcher: f})

	res, err := l.Snapshot(context.Background(), session.Anonymous(locale.English), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, SourcePlaceholder, res.Source)
	assert.Empty(t, res.Failures)
	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, 1247, res.Totals.TotalComplaints)
	assert.NotEmpty(t, res.Categories)
	assert.NotEmpty(t, res.Monthly)
}

func TestSnapshot_LiveIsolatesFailures(t *testing.T) {
	f := &stubFetcher{bundle: failingBundle()}
	l := New(Config{Fetcher: f})

	res, err := l.Snapshot(context.Background(), liveSession(), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, SourceLive, res.Source)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, gateway.PathWorkers, res.Failures[0].Endpoint)
	assert.True(t, res.Degraded())

	assert.NotEmpty(t, res.Departments)
	assert.Empty(t, res.Workers)
	require.NotNil(t, res.Today)
	assert.Equal(t, analytics.DefaultActiveWorkers, res.Today.ActiveWorkers)
}

func TestSnapshot_AllFailedStillRenders(t *testing.T) {
	fail := func(path string, fallback string) gateway.Result[json.RawMessage] {
		return gateway.Fail(&gateway.FetchError{Endpoint: path, Kind: gateway.KindUnauthorized, StatusCode: 401}, json.RawMessage(fallback))
	}
	f := &stubFetcher{bundle: gateway.Bundle{
		Dashboard:   fail(gateway.PathDashboard, `{}`),
		Departments: fail(gateway.PathDepartments, `[]`),
		Workers:     fail(gateway.PathWorkers, `[]`),
		Wards:       fail(gateway.PathWards, `[]`),
		Activity:    fail(gateway.PathActivity, `[]`),
	}}
	l := New(Config{Fetcher: f})

	res, err := l.Snapshot(context.Background(), liveSession(), LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, res.Failures, 5)
	assert.Equal(t, 0, res.Totals.TotalComplaints)
	assert.Empty(t, res.Categories)
}

func TestSnapshot_CacheHitAndBypass(t *testing.T) {
	f := &stubFetcher{bundle: gateway.Placeholder()}
	l := New(Config{Fetcher: f, Cache: NewMemoryCache(), CacheTTL: time.Minute})
	ctx := context.Background()

	first, err := l.Snapshot(ctx, liveSession(), LoadOptions{})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := l.Snapshot(ctx, liveSession(), LoadOptions{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, int32(1), f.calls.Load())

	_, err = l.Snapshot(ctx, liveSession(), LoadOptions{Fresh: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())

	_, err = l.Snapshot(ctx, liveSession(), LoadOptions{Language: locale.Hindi})
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestSnapshot_EmptySectionsStayLists(t *testing.T) {
	f := &stubFetcher{bundle: gateway.Bundle{
		Dashboard:   gateway.Ok(json.RawMessage(`{}`)),
		Departments: gateway.Ok(json.RawMessage(`[]`)),
		Workers:     gateway.Ok(json.RawMessage(`[]`)),
		Wards:       gateway.Ok(json.RawMessage(`[]`)),
		Activity:    gateway.Ok(json.RawMessage(`[]`)),
	}}
	l := New(Config{Fetcher: f, Cache: NewMemoryCache(), CacheTTL: time.Minute})
	ctx := context.Background()

	for _, wantCached := range []bool{false, true} {
		res, err := l.Snapshot(ctx, liveSession(), LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, wantCached, res.Cached)

		assert.NotNil(t, res.Monthly)
		assert.NotNil(t, res.Departments)
		assert.NotNil(t, res.Categories)
		assert.NotNil(t, res.Wards)
		assert.NotNil(t, res.Workers)
		assert.NotNil(t, res.Priorities)

		data, err := json.Marshal(res)
		require.NoError(t, err)
		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &doc))
		for _, key := range []string{"monthly", "departments", "categories", "wards", "workers", "priorities"} {
			assert.JSONEq(t, `[]`, string(doc[key]), key)
		}
		assert.Contains(t, doc, "today")
		assert.JSONEq(t, `[]`, string(doc["failures"]))
	}
}

func TestResultJSON_OmitsSectionsOutsideRole(t *testing.T) {
	citizen := liveSession()
	citizen.Role = records.RoleCitizen
	l := New(Config{Fetcher: &stubFetcher{bundle: gateway.Placeholder()}})

	res, err := l.Snapshot(context.Background(), citizen, LoadOptions{})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "departments")
	assert.NotContains(t, doc, "workers")
	assert.NotContains(t, doc, "priorities")
	assert.Contains(t, doc, "wards")

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Nil(t, back.Departments)
	assert.Equal(t, res.Categories, back.Categories)
	assert.Equal(t, res.Totals, back.Totals)
}

func TestSnapshot_HindiLocalizesCategories(t *testing.T) {
	l := New(Config{Machine: upperMachine{}})

	res, err := l.Snapshot(context.Background(), session.Anonymous(locale.Hindi), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, locale.Hindi, res.Language)

	names := map[string]string{}
	for _, c := range res.Categories {
		names[c.Key] = c.Name
	}
	assert.Equal(t, locale.For(locale.Hindi).T("categories.water_supply"), names["water_supply"])
}

func TestSnapshot_ArchivesLiveOnly(t *testing.T) {
	arch := &memoryArchive{}
	l := New(Config{Fetcher: &stubFetcher{bundle: gateway.Placeholder()}, Archive: arch})
	ctx := context.Background()

	_, err := l.Snapshot(ctx, liveSession(), LoadOptions{Archive: true})
	require.NoError(t, err)
	_, err = l.Snapshot(ctx, session.Anonymous(locale.English), LoadOptions{Archive: true})
	require.NoError(t, err)

	hist, err := l.History(ctx, liveSession(), time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "s1", hist[0].SessionID)
	assert.Equal(t, 1247, hist[0].Totals.TotalComplaints)
}

func TestHistory_NoArchive(t *testing.T) {
	_, err := New(Config{}).History(context.Background(), liveSession(), time.Time{}, 10)
	assert.ErrorIs(t, err, ErrNoArchive)
}

func TestSnapshot_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{Fetcher: &stubFetcher{bundle: gateway.Placeholder()}}).Snapshot(ctx, liveSession(), LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecentActivity(t *testing.T) {
	l := New(Config{Fetcher: &stubFetcher{
		feed: gateway.Fail(&gateway.FetchError{Endpoint: gateway.PathRecent, Kind: gateway.KindTransport}, json.RawMessage(`[]`)),
	}})

	placeholder := l.RecentActivity(context.Background(), session.Anonymous(locale.English), 2)
	assert.Equal(t, SourcePlaceholder, placeholder.Source)
	assert.Len(t, placeholder.Items, 2)

	live := l.RecentActivity(context.Background(), liveSession(), 10)
	assert.Equal(t, SourceLive, live.Source)
	assert.NotNil(t, live.Items)
	assert.Empty(t, live.Items)
	require.NotNil(t, live.Failure)
	assert.Equal(t, gateway.KindTransport, live.Failure.Kind)
}

func TestNotifications_Live(t *testing.T) {
	l := New(Config{Fetcher: &stubFetcher{
		feed: gateway.Ok(json.RawMessage(`[{"id":"n1","title":"t","is_read":true}]`)),
	}})

	feed := l.Notifications(context.Background(), liveSession(), 5)
	require.Len(t, feed.Items, 1)
	assert.True(t, feed.Items[0].Read)
	assert.Nil(t, feed.Failure)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(context.Background(), "k", []byte("v"), time.Second))
	v, ok, err := c.GetBytes(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Second)
	_, ok, _ = c.GetBytes(context.Background(), "k")
	assert.False(t, ok)
}
