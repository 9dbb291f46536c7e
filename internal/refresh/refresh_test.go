package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/pipeline"
	redisInternal "viksitkanpur/internal/repositories/redis"
	"viksitkanpur/internal/session"
)

type countingSampler struct {
	n atomic.Int32
}

func (s *countingSampler) Sample(_ context.Context, _ session.Session, at time.Time) (Sample, error) {
	n := int(s.n.Add(1))
	return Sample{Timestamp: at, Label: SampleLabel(at), Complaints: n}, nil
}

type failingSampler struct{}

func (failingSampler) Sample(context.Context, session.Session, time.Time) (Sample, error) {
	return Sample{}, errors.New("upstream down")
}

type lockerFunc func(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)

func (f lockerFunc) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	return f(ctx, key, ttl)
}

type loaderFunc func(ctx context.Context, sess session.Session, opts pipeline.LoadOptions) (pipeline.Result, error)

func (f loaderFunc) Snapshot(ctx context.Context, sess session.Session, opts pipeline.LoadOptions) (pipeline.Result, error) {
	return f(ctx, sess, opts)
}

func TestRing_KeepsNewest(t *testing.T) {
	r := NewRing[int](3)
	assert.Empty(t, r.Values())

	for i := 1; i <= 5; i++ {
		r.Push(i)
	}
	assert.Equal(t, []int{3, 4, 5}, r.Values())
	assert.Equal(t, 3, r.Len())
}

func TestRing_PartiallyFilled(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)
	assert.Equal(t, []int{1, 2}, r.Values())
}

func TestController_TickCapsAtTen(t *testing.T) {
	c := NewController(session.Anonymous(locale.English), Options{Sampler: &countingSampler{}})

	for i := 0; i < 15; i++ {
		assert.True(t, c.Tick(context.Background()))
	}

	samples := c.Samples()
	require.Len(t, samples, Capacity)
	assert.Equal(t, 6, samples[0].Complaints)
	assert.Equal(t, 15, samples[Capacity-1].Complaints)
}

func TestController_StartStopToggle(t *testing.T) {
	sampler := &countingSampler{}
	c := NewController(session.Anonymous(locale.English), Options{Sampler: sampler, Interval: 5 * time.Millisecond})

	assert.True(t, c.Toggle(true))
	c.Start()
	assert.Eventually(t, func() bool { return len(c.Samples()) >= 2 }, time.Second, 5*time.Millisecond)

	assert.False(t, c.Toggle(false))
	n := sampler.n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, sampler.n.Load())

	c.Stop()
	assert.False(t, c.Running())
}

func TestController_SkipsWhenLocked(t *testing.T) {
	sampler := &countingSampler{}
	c := NewController(session.Session{ID: "s1"}, Options{
		Sampler: sampler,
		Locker: lockerFunc(func(context.Context, string, time.Duration) (func(context.Context) error, error) {
			return nil, redisInternal.ErrLocked
		}),
	})

	assert.False(t, c.Tick(context.Background()))
	assert.Equal(t, int32(0), sampler.n.Load())
}

func TestController_ReleasesLock(t *testing.T) {
	var key string
	var released atomic.Bool
	c := NewController(session.Session{ID: "s1"}, Options{
		Sampler: &countingSampler{},
		Locker: lockerFunc(func(_ context.Context, k string, _ time.Duration) (func(context.Context) error, error) {
			key = k
			return func(context.Context) error { released.Store(true); return nil }, nil
		}),
	})

	assert.True(t, c.Tick(context.Background()))
	assert.Equal(t, "refresh:lock:s1", key)
	assert.True(t, released.Load())
}

func TestController_RecordsSamplerError(t *testing.T) {
	c := NewController(session.Session{ID: "s1"}, Options{Sampler: failingSampler{}})

	assert.False(t, c.Tick(context.Background()))
	assert.Equal(t, "upstream down", c.Status().LastError)
	assert.Empty(t, c.Samples())
}

func TestPipelineSampler(t *testing.T) {
	var gotOpts pipeline.LoadOptions
	p := &PipelineSampler{
		Loader: loaderFunc(func(_ context.Context, _ session.Session, opts pipeline.LoadOptions) (pipeline.Result, error) {
			gotOpts = opts
			return pipeline.Result{
				Snapshot: analytics.Snapshot{
					Totals: analytics.Totals{TotalComplaints: 40, Completed: 30},
					Today:  &analytics.TodayCounters{ActiveWorkers: 7},
				},
				Source: pipeline.SourceLive,
			}, nil
		}),
		Synthetic: NewSyntheticSampler(1),
	}

	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	s, err := p.Sample(context.Background(), session.Session{ID: "s", Token: "t"}, at)
	require.NoError(t, err)
	assert.Equal(t, Sample{Timestamp: at, Label: "10:30:00", Complaints: 40, Resolved: 30, ActiveWorkers: 7, Source: pipeline.SourceLive}, s)
	assert.True(t, gotOpts.Fresh)
	assert.True(t, gotOpts.Archive)

	synthetic, err := p.Sample(context.Background(), session.Anonymous(locale.English), at)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SourcePlaceholder, synthetic.Source)
}

func TestSyntheticSampler_Ranges(t *testing.T) {
	s := NewSyntheticSampler(42)
	for i := 0; i < 100; i++ {
		sample, err := s.Sample(context.Background(), session.Session{}, time.Now())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sample.Complaints, 10)
		assert.Less(t, sample.Complaints, 60)
		assert.GreaterOrEqual(t, sample.Resolved, 5)
		assert.Less(t, sample.Resolved, 35)
		assert.GreaterOrEqual(t, sample.ActiveWorkers, 20)
		assert.Less(t, sample.ActiveWorkers, 50)
	}
}

func TestRegistry_LifeCycle(t *testing.T) {
	r := NewRegistry(Options{Sampler: &countingSampler{}, Interval: time.Hour})
	a := session.Session{ID: "a"}
	b := session.Session{ID: "b"}

	assert.True(t, r.Toggle(a, true).Running)
	assert.True(t, r.Toggle(b, true).Running)
	assert.Equal(t, 2, r.Running())

	r.OnLogout(context.Background(), a)
	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Running())

	r.StopAll()
	assert.Equal(t, 0, r.Running())
}

func TestRegistry_EnsureUpdatesSession(t *testing.T) {
	r := NewRegistry(Options{Sampler: &countingSampler{}})
	c := r.Ensure(session.Session{ID: "a", Language: locale.English})
	same := r.Ensure(session.Session{ID: "a", Language: locale.Hindi})

	assert.Same(t, c, same)
	assert.Equal(t, locale.Hindi, c.session().Language)
}

func TestRegistry_StopsWhenSessionExpires(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	sess := session.Session{ID: "a", Token: "tok"}
	require.NoError(t, store.Save(ctx, sess, 60*time.Millisecond))

	sampler := &countingSampler{}
	r := NewRegistry(Options{Sampler: sampler, Interval: 10 * time.Millisecond, Sessions: store})
	c := r.Ensure(sess)
	c.Start()

	assert.Eventually(t, func() bool {
		_, ok := r.Get("a")
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, c.Running())
	assert.Equal(t, 0, r.Running())

	ticks := sampler.n.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, ticks, sampler.n.Load())

	c.Stop()
}

func TestController_PicksUpStoredSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, session.Session{ID: "a", Language: locale.Hindi}, time.Minute))

	c := NewController(session.Session{ID: "a", Language: locale.English}, Options{Sampler: &countingSampler{}, Sessions: store})
	assert.True(t, c.alive(ctx))
	assert.Equal(t, locale.Hindi, c.session().Language)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.False(t, c.alive(ctx))
}
