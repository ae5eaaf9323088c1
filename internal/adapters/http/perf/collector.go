// Package perf keeps a bounded in-memory record of request and query timings
// for the admin perf endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the collector capacity when none is given.
const DefaultRingSize = 10000

// Kind distinguishes HTTP requests from database queries.
type Kind string

const (
	KindRequest Kind = "request"
	KindQuery   Kind = "query"
)

// Entry is one timing sample.
type Entry struct {
	Kind       Kind
	Path       string // "METHOD /path" for requests, the SQL verb for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring of entries. When full the oldest entry is overwritten.
// Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector holding the last size entries.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Percentiles summarises a duration distribution in milliseconds.
type Percentiles struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// PathStat aggregates timing for a single path or query.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"totalMs"`
}

// Snapshot is the aggregated view served to admins.
type Snapshot struct {
	Since          time.Time   `json:"since"`
	TotalRecorded  int64       `json:"totalRecorded"`
	Requests       int         `json:"requests"`
	ServerErrors   int         `json:"serverErrors"`
	Queries        int         `json:"queries"`
	RequestMs      Percentiles `json:"requestMs"`
	QueryMs        Percentiles `json:"queryMs"`
	SlowestPaths   []PathStat  `json:"slowestPaths"`
	SlowestQueries []PathStat  `json:"slowestQueries"`
}

type bucket struct {
	durations []float64
	stats     map[string]*PathStat
}

func (b *bucket) add(e Entry) {
	b.durations = append(b.durations, e.DurationMs)
	s, ok := b.stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		b.stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
}

func (b *bucket) percentiles() Percentiles {
	if len(b.durations) == 0 {
		return Percentiles{}
	}
	sort.Float64s(b.durations)
	return Percentiles{
		P50: percentile(b.durations, 50),
		P95: percentile(b.durations, 95),
		P99: percentile(b.durations, 99),
	}
}

// Snapshot aggregates entries recorded at or after since.
// POST: SlowestPaths and SlowestQueries hold at most topN entries, slowest average first
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	requests := bucket{stats: make(map[string]*PathStat)}
	queries := bucket{stats: make(map[string]*PathStat)}
	snap := Snapshot{Since: since, TotalRecorded: c.TotalRecorded()}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requests.add(e)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		case KindQuery:
			queries.add(e)
		}
	}

	snap.Requests = len(requests.durations)
	snap.Queries = len(queries.durations)
	snap.RequestMs = requests.percentiles()
	snap.QueryMs = queries.percentiles()
	snap.SlowestPaths = topByAvg(requests.stats, topN)
	snap.SlowestQueries = topByAvg(queries.stats, topN)
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
