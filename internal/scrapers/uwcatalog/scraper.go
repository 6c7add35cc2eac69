package uwcatalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"uwcatalog/internal/catalog"
	"uwcatalog/internal/components/assert"
	"uwcatalog/internal/components/telemetry"
	"uwcatalog/pkg/htmlutil"
	"uwcatalog/pkg/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/errgroup"
)

const (
	report_scraper_scrape  = "scraper.scrape"
	report_scraper_extract = "scraper.extract"
)

var (
	tracer = otel.Tracer("uwcatalog.internal.scrapers.uwcatalog")
	meter  = otel.Meter("uwcatalog.internal.scrapers.uwcatalog")
)

// DefaultNameThreshold is the Jaro-Winkler similarity above which a department
// name matches a --department filter.
const DefaultNameThreshold = 0.9

type Options struct {
	Campuses []catalog.Campus
	// DepartmentLinks restricts scraping to the given department links (ex.
	// "cse.html"), directory discovery is skipped when it is set.
	DepartmentLinks []string
	// Departments restricts scraping to departments whose name is similar to
	// one of the given names.
	Departments []string
	// Concurrency is the maximum amount of department pages fetched at once.
	Concurrency int
	Extended    bool
}

// PageError is a department (or directory) page that could not be fetched.
type PageError struct {
	Campus catalog.Campus
	Link   string
	Err    error
}

func (e PageError) Error() string {
	return e.Campus.String() + " " + e.Link + ": " + e.Err.Error()
}

func (e PageError) Unwrap() error {
	return e.Err
}

type Result struct {
	// Records is sorted by (campus, department, code).
	Records []catalog.CourseRecord
	// Pages is sorted by (campus, link).
	Pages  []catalog.ExtractionResult
	Errors []PageError
}

// Scraper drives the extraction of every in-scope department page.
type Scraper struct {
	client Client
	tel    telemetry.API

	records  metric.Int64Counter
	failures metric.Int64Counter
	pages    metric.Int64Counter
}

func newCounter(tel telemetry.API, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		tel.ReportBroken(report_scraper_scrape, err, name)
		return noop.Int64Counter{}
	}
	return counter
}

func NewScraper(client Client, tel telemetry.API) Scraper {
	assert.NotNil("tel", tel)

	tel = telemetry.NewScopedAPI("uwcatalog_scraper", tel)

	return Scraper{
		client:   client,
		tel:      tel,
		records:  newCounter(tel, "uwcatalog.records", "Course records extracted."),
		failures: newCounter(tel, "uwcatalog.decode_failures", "Course blocks that failed to decode."),
		pages:    newCounter(tel, "uwcatalog.page_errors", "Pages that could not be fetched."),
	}
}

// FilterDepartments keeps the anchors whose name or link matches one of the
// given department names.
func FilterDepartments(anchors []htmlutil.Anchor, names []string, threshold float64) []htmlutil.Anchor {
	if len(names) == 0 {
		return anchors
	}
	var out []htmlutil.Anchor
	for _, a := range anchors {
		link := ""
		if a.Url != nil {
			link = strings.TrimSuffix(a.Url.Path[strings.LastIndex(a.Url.Path, "/")+1:], ".html")
		}
		if textutil.MatchName(a.Name, names, threshold) || slices.ContainsFunc(names, func(n string) bool {
			return link != "" && strings.EqualFold(strings.TrimSpace(n), link)
		}) {
			out = append(out, a)
		}
	}
	return out
}

func (s Scraper) departments(ctx context.Context, campus catalog.Campus, options Options) ([]htmlutil.Anchor, error) {
	if len(options.DepartmentLinks) > 0 {
		anchors := make([]htmlutil.Anchor, 0, len(options.DepartmentLinks))
		for _, link := range options.DepartmentLinks {
			a, err := s.client.ResolveDepartmentLink(campus, link)
			if err != nil {
				return nil, err
			}
			anchors = append(anchors, a)
		}
		return FilterDepartments(anchors, options.Departments, DefaultNameThreshold), nil
	}

	anchors, err := s.client.DepartmentLinks(ctx, campus)
	if err != nil {
		return nil, err
	}
	return FilterDepartments(anchors, options.Departments, DefaultNameThreshold), nil
}

type work struct {
	campus     catalog.Campus
	department htmlutil.Anchor
}

// Scrape fetches and extracts every in-scope department page. Pages that fail
// to be fetched are returned in Result.Errors, they do not stop the rest of
// the scrape. The returned error is only ever the context's error.
func (s Scraper) Scrape(ctx context.Context, options Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	concurrency := options.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var result Result
	var queue []work

	for _, campus := range options.Campuses {
		departments, err := s.departments(ctx, campus, options)
		if err != nil {
			link := ""
			if directory, dirErr := s.client.DirectoryUrl(campus); dirErr == nil {
				link = directory.String()
			}
			result.Errors = append(result.Errors, PageError{Campus: campus, Link: link, Err: err})
			s.pages.Add(ctx, 1)
			continue
		}
		s.tel.ReportDebug(report_scraper_scrape, campus.String(), len(departments))
		for _, d := range departments {
			queue = append(queue, work{campus: campus, department: d})
		}
	}

	lock := sync.Mutex{}
	group := errgroup.Group{}
	group.SetLimit(concurrency)

	for _, w := range queue {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			extracted, err := s.scrapeDepartment(ctx, w, options.Extended)

			lock.Lock()
			defer lock.Unlock()

			if err != nil {
				result.Errors = append(result.Errors, PageError{
					Campus: w.campus,
					Link:   w.department.Url.String(),
					Err:    err,
				})
				return nil
			}
			result.Pages = append(result.Pages, extracted)
			result.Records = append(result.Records, extracted.Records...)
			return nil
		})
	}
	group.Wait()

	slices.SortStableFunc(result.Records, func(a, b catalog.CourseRecord) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	slices.SortFunc(result.Pages, func(a, b catalog.ExtractionResult) int {
		if a.Campus != b.Campus {
			return int(a.Campus) - int(b.Campus)
		}
		return strings.Compare(a.Link, b.Link)
	})
	slices.SortFunc(result.Errors, func(a, b PageError) int {
		if a.Campus != b.Campus {
			return int(a.Campus) - int(b.Campus)
		}
		return strings.Compare(a.Link, b.Link)
	})

	s.tel.ReportCount(report_scraper_scrape, int64(len(result.Records)))

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape cancelled")
		return result, err
	}
	return result, nil
}

func (s Scraper) scrapeDepartment(ctx context.Context, w work, extended bool) (catalog.ExtractionResult, error) {
	ctx, span := tracer.Start(ctx, "DepartmentPage")
	defer span.End()

	span.SetAttributes(
		attribute.String("campus", w.campus.String()),
		attribute.String("department", w.department.Name),
	)

	page, err := s.client.DepartmentPage(ctx, w.campus, w.department)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch department page")
		s.pages.Add(ctx, 1, metric.WithAttributes(attribute.String("campus", w.campus.String())))
		return catalog.ExtractionResult{}, err
	}

	extracted := catalog.Extract(page, catalog.Options{Extended: extended})
	s.report(ctx, extracted)
	return extracted, nil
}

func (s Scraper) report(ctx context.Context, extracted catalog.ExtractionResult) {
	attrs := metric.WithAttributes(attribute.String("campus", extracted.Campus.String()))
	s.records.Add(ctx, int64(len(extracted.Records)), attrs)
	s.failures.Add(ctx, int64(len(extracted.Failures)), attrs)

	if extracted.Unparseable {
		s.tel.ReportWarning(
			report_scraper_extract,
			"no course listings found on page",
			extracted.Campus.String(),
			extracted.Link,
		)
	}
	for _, failure := range extracted.Failures {
		s.tel.ReportWarning(
			report_scraper_extract,
			failure,
			extracted.Campus.String(),
			extracted.Link,
		)
	}
	s.tel.ReportDebug(
		report_scraper_extract,
		extracted.Campus.String(),
		extracted.Department,
		len(extracted.Records),
	)
}
