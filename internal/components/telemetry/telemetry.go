package telemetry

import (
	"fmt"

	"uwcatalog/internal/components/assert"
)

// API is where the catalog client, scraper and extractor send their logs
// and counters. Tests swap in a RecorderAPI to assert on what was reported.
//
// Ids name the component that reported, `<struct>.<method>` in lowercase
// with dashes (ex. `client.department-page`), the ScopedAPI prefix names
// the package. Details go in params, not in the id.
type API interface {
	// ReportBroken reports a failure that loses data, such as a department
	// page that could not be fetched.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something odd that did not lose data, such as a
	// listing that decoded with a failure.
	ReportWarning(id string, params ...any)
	// ReportDebug reports request and segmenting detail.
	ReportDebug(msg string, params ...any)
	// ReportCount reports a point in time count (records on a page, pages
	// left), not a running total.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, "uwcatalog_client: " for
// reports made by the catalog client.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	assert.NotEmptyStr("namespace", namespace)
	assert.NotNil("inner", inner)
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
