package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind says which layer produced a timing entry.
type EntryKind uint8

const (
	// KindRequest is an inbound dashboard request.
	KindRequest EntryKind = iota
	// KindUpstream is a call to the Civic Briefs API.
	KindUpstream
	// KindStorage is a profile store query.
	KindStorage
)

// String names the kind for display.
func (k EntryKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindUpstream:
		return "upstream"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /capsule/daily" or "UPSERT profile_kv"
	StatusCode int    // HTTP status; 0 for storage and failed upstream calls
	DurationMs float64
	Timestamp  time.Time
}

// Recorder is the write side of a Collector.
type Recorder interface {
	Record(e Entry)
}

// Collector is a fixed-size ring buffer of timing entries.
// Writes never block on aggregation; when full the oldest entry is overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   [3]int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: none; size <= 0 selects DefaultRingSize
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	if int(e.Kind) < len(c.count) {
		atomic.AddInt64(&c.count[e.Kind], 1)
	}
}

// TotalRecorded returns how many entries of kind were ever recorded.
func (c *Collector) TotalRecorded(kind EntryKind) int64 {
	if int(kind) >= len(c.count) {
		return 0
	}
	return atomic.LoadInt64(&c.count[kind])
}

// Snapshot is the aggregated view shown on the operator perf page.
type Snapshot struct {
	TotalRequests  int64
	TotalUpstream  int64
	TotalStorage   int64
	RequestP50Ms   float64
	RequestP95Ms   float64
	UpstreamP50Ms  float64
	UpstreamP95Ms  float64
	UpstreamErrors int
	RequestErrors  int // dashboard responses with a 5xx status
	SlowestPaths   []PathStat
	SlowestCalls   []PathStat
	SlowestQueries []PathStat
}

// PathStat aggregates timing for a single path, upstream route or statement.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

// Snapshot aggregates entries newer than since, keeping topN per list.
// Sorting happens here, so callers should only snapshot on page load.
// PRE: topN > 0
// POST: Returns percentiles per kind and the slowest paths per kind
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	durations := map[EntryKind][]float64{}
	stats := map[EntryKind]map[string]*PathStat{
		KindRequest:  {},
		KindUpstream: {},
		KindStorage:  {},
	}
	upstreamErrors, requestErrors := 0, 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		byPath, ok := stats[e.Kind]
		if !ok {
			continue
		}
		durations[e.Kind] = append(durations[e.Kind], e.DurationMs)
		if e.Kind == KindUpstream && (e.StatusCode == 0 || e.StatusCode >= 400) {
			upstreamErrors++
		}
		if e.Kind == KindRequest && e.StatusCode >= 500 {
			requestErrors++
		}
		s, ok := byPath[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			byPath[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		if e.DurationMs > s.MaxMs {
			s.MaxMs = e.DurationMs
		}
	}

	for _, byPath := range stats {
		for _, s := range byPath {
			s.AvgMs = s.TotalMs / float64(s.Count)
		}
	}

	snap := Snapshot{
		TotalRequests:  c.TotalRecorded(KindRequest),
		TotalUpstream:  c.TotalRecorded(KindUpstream),
		TotalStorage:   c.TotalRecorded(KindStorage),
		UpstreamErrors: upstreamErrors,
		RequestErrors:  requestErrors,
		SlowestPaths:   topByAvg(stats[KindRequest], topN),
		SlowestCalls:   topByAvg(stats[KindUpstream], topN),
		SlowestQueries: topByAvg(stats[KindStorage], topN),
	}
	if d := durations[KindRequest]; len(d) > 0 {
		sort.Float64s(d)
		snap.RequestP50Ms = percentile(d, 50)
		snap.RequestP95Ms = percentile(d, 95)
	}
	if d := durations[KindUpstream]; len(d) > 0 {
		sort.Float64s(d)
		snap.UpstreamP50Ms = percentile(d, 50)
		snap.UpstreamP95Ms = percentile(d, 95)
	}
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

// topByAvg returns the n slowest entries by average duration.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
