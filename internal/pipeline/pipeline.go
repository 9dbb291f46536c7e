// Package pipeline turns one session into one dashboard snapshot:
// fetch (or placeholder), normalize, localize, aggregate, cache.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
	"viksitkanpur/internal/normalize"
	"viksitkanpur/internal/session"
	"viksitkanpur/pkg/logger"
)

// Source tells where the data of a snapshot came from.
type Source string

const (
	SourceLive        Source = "live"
	SourcePlaceholder Source = "placeholder"
)

// Fetcher is the part of the backend client the pipeline uses.
type Fetcher interface {
	FetchAll(ctx context.Context, token string) gateway.Bundle
	RecentActivity(ctx context.Context, token string, limit int) gateway.Result[json.RawMessage]
	Notifications(ctx context.Context, token string, limit int) gateway.Result[json.RawMessage]
}

// Cache stores encoded snapshots.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Result is a snapshot plus its provenance.
type Result struct {
	analytics.Snapshot
	Source   Source            `json:"source"`
	Failures []gateway.Failure `json:"failures"`
	Cached   bool              `json:"cached"`
}

type resultView struct {
	analytics.View
	Source   Source            `json:"source"`
	Failures []gateway.Failure `json:"failures"`
	Cached   bool              `json:"cached"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	failures := r.Failures
	if failures == nil {
		failures = []gateway.Failure{}
	}
	return json.Marshal(resultView{View: r.Snapshot.View(), Source: r.Source, Failures: failures, Cached: r.Cached})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var v resultView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Result{Snapshot: v.View.Snapshot(), Source: v.Source, Failures: v.Failures, Cached: v.Cached}
	return nil
}

// Degraded reports whether some upstream call failed for a live snapshot.
func (r Result) Degraded() bool {
	return r.Source == SourceLive && len(r.Failures) > 0
}

// LoadOptions tune a single Snapshot call.
type LoadOptions struct {
	// Language overrides the session language when set.
	Language locale.Lang
	// Fresh bypasses the cache read.
	Fresh bool
	// Archive writes the result to the snapshot archive.
	Archive bool
}

// Config of a Loader. Only Fetcher-less loaders serve placeholder data for
// every session.
type Config struct {
	Fetcher  Fetcher
	Cache    Cache
	CacheTTL time.Duration
	Archive  Archive
	Machine  locale.TextTranslator
	Location *time.Location
	Logger   logger.Logger
}

// Loader builds snapshots.
type Loader struct {
	fetcher  Fetcher
	cache    Cache
	cacheTTL time.Duration
	archive  Archive
	machine  locale.TextTranslator
	loc      *time.Location
	log      logger.Logger
	now      func() time.Time
}

// New returns a Loader.
func New(cfg Config) *Loader {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard{}
	}
	return &Loader{
		fetcher:  cfg.Fetcher,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		archive:  cfg.Archive,
		machine:  cfg.Machine,
		loc:      cfg.Location,
		log:      cfg.Logger,
		now:      time.Now,
	}
}

// Location is the time zone snapshots are computed in.
func (l *Loader) Location() *time.Location {
	return l.loc
}

func (l *Loader) translator(lang locale.Lang) locale.Translator {
	tr := locale.For(lang)
	if l.machine != nil {
		tr = tr.WithMachine(l.machine)
	}
	return tr
}

func (l *Loader) live(sess session.Session) bool {
	return l.fetcher != nil && sess.HasToken()
}

func cacheKey(sess session.Session, lang locale.Lang) string {
	return fmt.Sprintf("snapshot:%s:%s:%s", sess.ID, sess.Role, lang)
}

// Snapshot returns the dashboard of sess. Upstream failures never make it
// fail; they are listed in Result.Failures and the affected sections fall
// back to empty data. The only error is a canceled context.
func (l *Loader) Snapshot(ctx context.Context, sess session.Session, opts LoadOptions) (Result, error) {
	lang := sess.Language
	if opts.Language != "" {
		lang = opts.Language
	}
	key := cacheKey(sess, lang)

	if !opts.Fresh {
		if res, ok := l.cached(ctx, key); ok {
			return res, nil
		}
	}

	source := SourcePlaceholder
	var bundle gateway.Bundle
	if l.live(sess) {
		source = SourceLive
		bundle = l.fetcher.FetchAll(ctx, sess.Token)
	} else {
		bundle = gateway.Placeholder()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	failures := bundle.Failures()
	for _, f := range failures {
		l.log.Warn("Upstream call failed", map[string]interface{}{
			"session_id": sess.ID,
			"endpoint":   f.Endpoint,
			"kind":       string(f.Kind),
			"status":     f.Status,
		})
	}

	tr := l.translator(lang)
	in := l.normalizeBundle(sess, tr, bundle)

	snap := analytics.Build(in, analytics.Options{
		Translator:    tr,
		Now:           l.now(),
		Location:      l.loc,
		Role:          sess.Role,
		CategoryNames: localizeCategories(ctx, tr, in.Dashboard.Categories),
	})

	res := Result{Snapshot: snap, Source: source, Failures: failures}
	l.store(ctx, key, res)

	if opts.Archive && l.archive != nil && source == SourceLive {
		if err := l.archive.Save(ctx, NewArchiveRecord(sess, res)); err != nil {
			l.log.Error("Failed to archive snapshot", err, map[string]interface{}{"session_id": sess.ID})
		}
	}

	return res, nil
}

func (l *Loader) normalizeBundle(sess session.Session, tr locale.Translator, b gateway.Bundle) analytics.Input {
	n := normalize.New(tr).WithLocation(l.loc)

	dashboard, dIssues := n.Dashboard(b.Dashboard.OrDefault())
	departments, depIssues := n.Departments(b.Departments.OrDefault())
	workers, wIssues := n.Workers(b.Workers.OrDefault())
	wards, waIssues := n.Wards(b.Wards.OrDefault())
	complaints, cIssues := n.Complaints(b.Activity.OrDefault())

	var issues []normalize.Issue
	for _, group := range [][]normalize.Issue{dIssues, depIssues, wIssues, waIssues, cIssues} {
		issues = append(issues, group...)
	}
	l.logIssues(sess, issues)

	if len(complaints) == 0 && len(dashboard.RecentComplaints) > 0 {
		complaints = dashboard.RecentComplaints
	}

	return analytics.Input{
		Dashboard:    dashboard,
		Complaints:   complaints,
		Departments:  departments,
		Wards:        wards,
		Workers:      workers,
		WorkersKnown: b.Workers.OK(),
	}
}

const maxLoggedIssues = 20

func (l *Loader) logIssues(sess session.Session, issues []normalize.Issue) {
	for i, issue := range issues {
		if i == maxLoggedIssues {
			l.log.Warn("Further data-shape issues suppressed", map[string]interface{}{
				"session_id": sess.ID,
				"remaining":  len(issues) - maxLoggedIssues,
			})
			return
		}
		l.log.Warn("Data-shape issue", map[string]interface{}{
			"session_id": sess.ID,
			"source":     issue.Source,
			"index":      issue.Index,
			"field":      issue.Field,
			"issue":      issue.Message,
		})
	}
}

func localizeCategories(ctx context.Context, tr locale.Translator, cats []records.CategoryCount) map[string]string {
	if tr.Lang() == locale.English || len(cats) == 0 {
		return nil
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.Name] = tr.Category(ctx, c.Name)
	}
	return names
}

func (l *Loader) cached(ctx context.Context, key string) (Result, bool) {
	if l.cache == nil || l.cacheTTL <= 0 {
		return Result{}, false
	}
	data, found, err := l.cache.GetBytes(ctx, key)
	if err != nil {
		l.log.Warn("Snapshot cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return Result{}, false
	}
	if !found {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		l.log.Warn("Discarding undecodable cached snapshot", map[string]interface{}{"key": key})
		return Result{}, false
	}
	res.Cached = true
	return res, true
}

func (l *Loader) store(ctx context.Context, key string, res Result) {
	if l.cache == nil || l.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		l.log.Error("Failed to encode snapshot", err)
		return
	}
	if err := l.cache.SetBytes(ctx, key, data, l.cacheTTL); err != nil {
		l.log.Warn("Snapshot cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
