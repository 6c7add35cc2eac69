package uwcatalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"uwcatalog/internal/catalog"
	"uwcatalog/internal/components/assert"
	"uwcatalog/internal/components/restyutil"
	"uwcatalog/internal/components/telemetry"
	"uwcatalog/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	report_client_department_links = "client.department-links"
	report_client_department_page  = "client.department-page"
)

// DirectoryUrls are the course description indexes of each campus.
var DirectoryUrls = map[catalog.Campus]string{
	catalog.CAMPUS_BOTHELL: "https://www.washington.edu/students/crscatb/",
	catalog.CAMPUS_SEATTLE: "https://www.washington.edu/students/crscat/",
	catalog.CAMPUS_TACOMA:  "https://www.washington.edu/students/crscatt/",
}

type ClientOptions struct {
	UserAgent string
	// RequestsPerSecond is shared by every request the client makes, 0 means
	// unlimited.
	RequestsPerSecond float64
	Timeout           time.Duration
	// Retries is the amount of times a request is retried on transport errors
	// and 5xx responses.
	Retries int
	// DirectoryUrls overrides the directory url of a campus.
	DirectoryUrls map[catalog.Campus]string
	// Dump receives every http exchange when it is set.
	Dump restyutil.Output
}

type Client struct {
	http        *resty.Client
	directories map[catalog.Campus]*url.URL
	tel         telemetry.API
}

func NewClient(options ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil("tel", tel)

	tel = telemetry.NewScopedAPI("uwcatalog_client", tel)

	directories := make(map[catalog.Campus]*url.URL)
	for campus, link := range DirectoryUrls {
		if override, ok := options.DirectoryUrls[campus]; ok && override != "" {
			link = override
		}
		parsed, err := url.Parse(link)
		if err != nil {
			return Client{}, fmt.Errorf("parse directory url of %s: %w", campus, err)
		}
		directories[campus] = parsed
	}

	httpClient := resty.New()
	if options.UserAgent != "" {
		httpClient.SetHeader("user-agent", options.UserAgent)
	}
	if options.Timeout > 0 {
		httpClient.SetTimeout(options.Timeout)
	} else {
		httpClient.SetTimeout(time.Second * 30)
	}
	if options.Retries > 0 {
		httpClient.SetRetryCount(options.Retries)
		httpClient.SetRetryWaitTime(time.Millisecond * 500)
		httpClient.SetRetryMaxWaitTime(time.Second * 5)
		httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
			return err != nil || res.StatusCode() >= http.StatusInternalServerError
		})
	}

	if options.RequestsPerSecond > 0 {
		rateLimiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Dump(httpClient, options.Dump)

	return Client{
		http:        httpClient,
		directories: directories,
		tel:         tel,
	}, nil
}

// DirectoryUrl returns the course description index of a campus.
func (c Client) DirectoryUrl(campus catalog.Campus) (*url.URL, error) {
	link, ok := c.directories[campus]
	if !ok {
		return nil, fmt.Errorf("unknown campus %d", campus)
	}
	return link, nil
}

// get fetches a page and decodes it into utf-8 text.
func (c Client) get(ctx context.Context, link string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch: unexpected status %s", res.Status())
	}

	reader, err := charset.NewReader(bytes.NewReader(res.Body()), res.Header().Get("content-type"))
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	return string(content), nil
}

func isDepartmentLink(directory *url.URL, link *url.URL) bool {
	if link.Host != directory.Host {
		return false
	}
	if !strings.HasSuffix(link.Path, ".html") {
		return false
	}
	return path.Dir(link.Path)+"/" == directory.Path
}

// DepartmentLinks lists the department pages linked from the directory page
// of a campus, in page order.
func (c Client) DepartmentLinks(ctx context.Context, campus catalog.Campus) ([]htmlutil.Anchor, error) {
	directory, err := c.DirectoryUrl(campus)
	if err != nil {
		return nil, err
	}

	c.tel.ReportDebug(report_client_department_links, campus.String(), directory.String())

	content, err := c.get(ctx, directory.String())
	if err != nil {
		c.tel.ReportBroken(report_client_department_links, err, directory.String())
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		c.tel.ReportBroken(
			report_client_department_links,
			fmt.Errorf("parse: %w", err),
			directory.String(),
		)
		return nil, err
	}

	candidates := htmlutil.GetAnchors(ctx, directory, doc.Find("div.uw-content li a"))
	if len(candidates) == 0 {
		c.tel.ReportWarning(
			report_client_department_links,
			"div.uw-content not found, falling back to every list link",
			directory.String(),
		)
		candidates = htmlutil.GetAnchors(ctx, directory, doc.Find("li a"))
	}

	seen := make(map[string]struct{})
	var anchors []htmlutil.Anchor
	for _, a := range candidates {
		if !isDepartmentLink(directory, a.Url) {
			continue
		}
		a.Url.Fragment = ""
		key := a.Url.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		anchors = append(anchors, a)
	}

	c.tel.ReportCount(report_client_department_links, int64(len(anchors)))

	return anchors, nil
}

// ResolveDepartmentLink resolves a department link (ex. "cse.html") against
// the directory of a campus.
func (c Client) ResolveDepartmentLink(campus catalog.Campus, link string) (htmlutil.Anchor, error) {
	directory, err := c.DirectoryUrl(campus)
	if err != nil {
		return htmlutil.Anchor{}, err
	}
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return htmlutil.Anchor{}, fmt.Errorf("parse department link: %w", err)
	}
	return htmlutil.Anchor{
		Name: link,
		Url:  directory.ResolveReference(parsed),
	}, nil
}

// DepartmentPage fetches the course descriptions of a department.
func (c Client) DepartmentPage(ctx context.Context, campus catalog.Campus, department htmlutil.Anchor) (catalog.DepartmentPage, error) {
	if department.Url == nil {
		return catalog.DepartmentPage{}, fmt.Errorf("department %q has no link", department.Name)
	}

	endpoint := department.Url.String()
	c.tel.ReportDebug(report_client_department_page, endpoint)

	content, err := c.get(ctx, endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_department_page, err, endpoint)
		return catalog.DepartmentPage{}, err
	}

	return catalog.DepartmentPage{
		Campus:     campus,
		Department: department.Name,
		Link:       endpoint,
		Content:    content,
	}, nil
}
