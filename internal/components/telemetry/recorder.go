package telemetry

import (
	"strings"
	"sync"
)

type ReportKind int

const (
	REPORT_BROKEN ReportKind = iota
	REPORT_WARNING
	REPORT_DEBUG
	REPORT_COUNT
)

type Report struct {
	Kind   ReportKind
	Id     string
	Params []any
}

// Recorder implements API by keeping every report in memory, it is meant
// to be used in tests to assert that something was (or wasn't) reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(kind ReportKind, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, Id: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(REPORT_BROKEN, id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(REPORT_WARNING, id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(REPORT_DEBUG, msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(REPORT_COUNT, id, []any{count})
}

// Reports returns a copy of every report of the given kind.
func (r *Recorder) Reports(kind ReportKind) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// Count returns how many reports of the given kind have an id ending in `suffix`,
// scoped ids are prefixed with their namespace so matching the suffix is enough.
func (r *Recorder) Count(kind ReportKind, suffix string) int {
	n := 0
	for _, report := range r.Reports(kind) {
		if strings.HasSuffix(report.Id, suffix) {
			n++
		}
	}
	return n
}
