package refresh

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"viksitkanpur/internal/pipeline"
	"viksitkanpur/internal/session"
)

// Sample is one point of the real-time activity chart.
type Sample struct {
	Timestamp     time.Time       `json:"timestamp"`
	Label         string          `json:"label"`
	Complaints    int             `json:"complaints"`
	Resolved      int             `json:"resolved"`
	ActiveWorkers int             `json:"activeWorkers"`
	Source        pipeline.Source `json:"source"`
}

// Sampler produces the next chart point for a session.
type Sampler interface {
	Sample(ctx context.Context, sess session.Session, at time.Time) (Sample, error)
}

// SampleLabel formats the x-axis label of a sample.
func SampleLabel(t time.Time) string {
	return t.Format("15:04:05")
}

// SnapshotLoader is the pipeline entry point a PipelineSampler polls.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, sess session.Session, opts pipeline.LoadOptions) (pipeline.Result, error)
}

// PipelineSampler derives samples from a fresh snapshot. Token-less
// sessions get synthetic samples.
type PipelineSampler struct {
	Loader    SnapshotLoader
	Synthetic *SyntheticSampler
}

func (p *PipelineSampler) Sample(ctx context.Context, sess session.Session, at time.Time) (Sample, error) {
	if !sess.HasToken() && p.Synthetic != nil {
		return p.Synthetic.Sample(ctx, sess, at)
	}

	res, err := p.Loader.Snapshot(ctx, sess, pipeline.LoadOptions{Fresh: true, Archive: true})
	if err != nil {
		return Sample{}, err
	}
	s := Sample{
		Timestamp:  at,
		Label:      SampleLabel(at),
		Complaints: res.Totals.TotalComplaints,
		Resolved:   res.Totals.Completed,
		Source:     res.Source,
	}
	if res.Today != nil {
		s.ActiveWorkers = res.Today.ActiveWorkers
	}
	return s, nil
}

// SyntheticSampler generates random chart points for placeholder sessions.
type SyntheticSampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSyntheticSampler returns a sampler seeded with seed.
func NewSyntheticSampler(seed int64) *SyntheticSampler {
	return &SyntheticSampler{rnd: rand.New(rand.NewSource(seed))}
}

// Sample draws complaints in [10,59], resolved in [5,34] and active workers
// in [20,49].
func (s *SyntheticSampler) Sample(_ context.Context, _ session.Session, at time.Time) (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sample{
		Timestamp:     at,
		Label:         SampleLabel(at),
		Complaints:    10 + s.rnd.Intn(50),
		Resolved:      5 + s.rnd.Intn(30),
		ActiveWorkers: 20 + s.rnd.Intn(30),
		Source:        pipeline.SourcePlaceholder,
	}, nil
}
