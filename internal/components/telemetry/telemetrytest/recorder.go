// Package telemetrytest records telemetry reports so tests can assert on what
// a component reported.
package telemetrytest

import (
	"strings"
	"sync"
)

type Kind int

const (
	KindBroken Kind = iota
	KindWarning
	KindDebug
	KindCount
)

type Report struct {
	Kind   Kind
	Id     string
	Params []any
	Count  int64
}

// Recorder implements telemetry.API, it is safe for concurrent use.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record(Report{Kind: KindBroken, Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record(Report{Kind: KindWarning, Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record(Report{Kind: KindDebug, Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record(Report{Kind: KindCount, Id: id, Count: count})
}

// Reports returns every report of the given kind.
func (r *Recorder) Reports(kind Kind) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	out := []Report{}
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// Has reports whether a report of the given kind has an id ending with suffix,
// scoped ids are prefixed by their namespace.
func (r *Recorder) Has(kind Kind, suffix string) bool {
	for _, report := range r.Reports(kind) {
		if strings.HasSuffix(report.Id, suffix) {
			return true
		}
	}
	return false
}

// Counts returns the values reported for ids ending with suffix, in order.
func (r *Recorder) Counts(suffix string) []int64 {
	counts := []int64{}
	for _, report := range r.Reports(KindCount) {
		if strings.HasSuffix(report.Id, suffix) {
			counts = append(counts, report.Count)
		}
	}
	return counts
}
