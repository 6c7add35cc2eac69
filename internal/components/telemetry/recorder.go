package telemetry

import "sync"

type Report struct {
	Level  string
	Id     string
	Params []any
}

// RecorderAPI is an API that keeps every report in memory, it is meant for
// asserting on reports in tests.
type RecorderAPI struct {
	lock    *sync.Mutex
	reports *[]Report
}

func NewRecorderAPI() RecorderAPI {
	return RecorderAPI{
		lock:    &sync.Mutex{},
		reports: &[]Report{},
	}
}

func (r RecorderAPI) record(level, id string, params []any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	*r.reports = append(*r.reports, Report{Level: level, Id: id, Params: params})
}

func (r RecorderAPI) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r RecorderAPI) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r RecorderAPI) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r RecorderAPI) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns the reports of a given level, or every report if level is
// empty.
func (r RecorderAPI) Reports(level string) []Report {
	r.lock.Lock()
	defer r.lock.Unlock()
	var out []Report
	for _, report := range *r.reports {
		if level == "" || report.Level == level {
			out = append(out, report)
		}
	}
	return out
}
