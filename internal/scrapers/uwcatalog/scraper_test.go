package uwcatalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"uwcatalog/internal/catalog"
	"uwcatalog/internal/components/telemetry"
	"uwcatalog/pkg/htmlutil"

	"github.com/stretchr/testify/require"
)

const directoryPage = `<html><body>
<nav><ul><li><a href="/students/">Students home</a></li></ul></nav>
<div class="uw-content">
<ul>
<li><a href="cse.html">Computer Science &amp; Engineering</a></li>
<li><a href="ee.html">Electrical &amp; Computer Engineering</a></li>
<li><a href="ee.html#top">Electrical &amp; Computer Engineering</a></li>
<li><a href="missing.html">Marine Biology</a></li>
<li><a href="https://myplan.uw.edu/">MyPlan</a></li>
<li><a href="../crscatb/bbus.html">Business (Bothell)</a></li>
</ul>
</div>
</body></html>`

const csePage = `<html><body>
<h1>COMPUTER SCIENCE &amp; ENGINEERING</h1>
<p><b>CSE 143 Computer Programming II (5) NW, QSR</b><br>
Continuation of CSE 142. Prerequisite: CSE 142. Offered: AWSpS.</p>
<p><b>CSE 142 Computer Programming I (4) NW, QSR</b><br>
Basic programming-in-the-small abilities and concepts. Offered: AWSpS.</p>
<p><b>Note:</b> courses numbered 600 and above are graduate courses.</p>
</body></html>`

const eePage = `<html><body>
<p><b>E E 235 Continuous Time Linear Systems (5)</b><br>
Prerequisite: MATH 136, PHYS 122. Offered: A,W,Sp.</p>
</body></html>`

type fakeCatalog struct {
	server   *httptest.Server
	requests atomic.Int64
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	fake := &fakeCatalog{}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.requests.Add(1)
		w.Header().Set("content-type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/students/crscat/":
			w.Write([]byte(directoryPage))
		case "/students/crscat/cse.html":
			w.Write([]byte(csePage))
		case "/students/crscat/ee.html":
			w.Write([]byte(eePage))
		case "/students/crscatt/":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeCatalog) client(t *testing.T, tel telemetry.API) Client {
	client, err := NewClient(ClientOptions{
		UserAgent: "uwcatalog-test",
		DirectoryUrls: map[catalog.Campus]string{
			catalog.CAMPUS_SEATTLE: f.server.URL + "/students/crscat/",
			catalog.CAMPUS_TACOMA:  f.server.URL + "/students/crscatt/",
		},
	}, tel)
	require.NoError(t, err)
	return client
}

func TestDepartmentLinks(t *testing.T) {
	fake := newFakeCatalog(t)
	recorder := telemetry.NewRecorderAPI()
	client := fake.client(t, recorder)

	anchors, err := client.DepartmentLinks(context.Background(), catalog.CAMPUS_SEATTLE)
	require.NoError(t, err)

	var names []string
	var links []string
	for _, a := range anchors {
		names = append(names, a.Name)
		links = append(links, a.Url.String())
	}
	require.Equal(t, []string{
		"Computer Science & Engineering",
		"Electrical & Computer Engineering",
		"Marine Biology",
	}, names)
	require.Equal(t, []string{
		fake.server.URL + "/students/crscat/cse.html",
		fake.server.URL + "/students/crscat/ee.html",
		fake.server.URL + "/students/crscat/missing.html",
	}, links)
	require.Empty(t, recorder.Reports("warning"))

	_, err = client.DepartmentLinks(context.Background(), catalog.CAMPUS_TACOMA)
	require.Error(t, err)
	require.NotEmpty(t, recorder.Reports("broken"))
}

func TestDepartmentPage(t *testing.T) {
	fake := newFakeCatalog(t)
	client := fake.client(t, telemetry.NewRecorderAPI())

	anchor, err := client.ResolveDepartmentLink(catalog.CAMPUS_SEATTLE, "cse.html")
	require.NoError(t, err)
	require.Equal(t, fake.server.URL+"/students/crscat/cse.html", anchor.Url.String())

	page, err := client.DepartmentPage(context.Background(), catalog.CAMPUS_SEATTLE, anchor)
	require.NoError(t, err)
	require.Equal(t, catalog.CAMPUS_SEATTLE, page.Campus)
	require.Equal(t, anchor.Url.String(), page.Link)
	require.Contains(t, page.Content, "CSE 142")

	missing, err := client.ResolveDepartmentLink(catalog.CAMPUS_SEATTLE, "missing.html")
	require.NoError(t, err)
	_, err = client.DepartmentPage(context.Background(), catalog.CAMPUS_SEATTLE, missing)
	require.ErrorContains(t, err, "404")

	_, err = client.DepartmentPage(context.Background(), catalog.CAMPUS_SEATTLE, htmlutil.Anchor{Name: "nil"})
	require.Error(t, err)
}

func TestFilterDepartments(t *testing.T) {
	parse := func(link string) *url.URL {
		parsed, err := url.Parse(link)
		require.NoError(t, err)
		return parsed
	}
	anchors := []htmlutil.Anchor{
		{Name: "Accounting", Url: parse("https://www.washington.edu/students/crscatb/bacct.html")},
		{Name: "Biology", Url: parse("https://www.washington.edu/students/crscatb/bbio.html")},
		{Name: "Computer Science & Engineering", Url: parse("https://www.washington.edu/students/crscat/cse.html")},
	}

	require.Equal(t, anchors, FilterDepartments(anchors, nil, DefaultNameThreshold))

	filtered := FilterDepartments(anchors, []string{"acounting"}, DefaultNameThreshold)
	require.Len(t, filtered, 1)
	require.Equal(t, "Accounting", filtered[0].Name)

	filtered = FilterDepartments(anchors, []string{"cse", "computer science and engineering"}, DefaultNameThreshold)
	require.Len(t, filtered, 1)
	require.Equal(t, "Computer Science & Engineering", filtered[0].Name)

	require.Empty(t, FilterDepartments(anchors, []string{"Philosophy"}, DefaultNameThreshold))

	sciences := []htmlutil.Anchor{
		{Name: "Art", Url: parse("https://www.washington.edu/students/crscat/art.html")},
		{Name: "Earth & Space Sciences", Url: parse("https://www.washington.edu/students/crscat/ess.html")},
	}
	filtered = FilterDepartments(sciences, []string{"art"}, DefaultNameThreshold)
	require.Len(t, filtered, 1)
	require.Equal(t, "Art", filtered[0].Name)
}

func TestScrape(t *testing.T) {
	fake := newFakeCatalog(t)
	recorder := telemetry.NewRecorderAPI()
	scraper := NewScraper(fake.client(t, recorder), recorder)

	result, err := scraper.Scrape(context.Background(), Options{
		Campuses:    []catalog.Campus{catalog.CAMPUS_SEATTLE, catalog.CAMPUS_TACOMA},
		Concurrency: 3,
		Extended:    true,
	})
	require.NoError(t, err)

	var keys []string
	for _, record := range result.Records {
		keys = append(keys, record.Key())
	}
	require.Equal(t, []string{
		"Seattle/CSE/142",
		"Seattle/CSE/143",
		"Seattle/E E/235",
	}, keys)
	require.Equal(t, []string{"A", "W", "Sp"}, result.Records[2].OfferedQuarters)

	require.Len(t, result.Pages, 2)
	require.Equal(t, fake.server.URL+"/students/crscat/cse.html", result.Pages[0].Link)
	require.Len(t, result.Pages[0].Failures, 1)

	// the 404 department page and the broken tacoma directory
	require.Len(t, result.Errors, 2)
	require.Equal(t, catalog.CAMPUS_SEATTLE, result.Errors[0].Campus)
	require.Equal(t, fake.server.URL+"/students/crscat/missing.html", result.Errors[0].Link)
	require.Equal(t, catalog.CAMPUS_TACOMA, result.Errors[1].Campus)

	// the "Note:" block is reported
	require.NotEmpty(t, recorder.Reports("warning"))
}

func TestScrapeDepartmentLinks(t *testing.T) {
	fake := newFakeCatalog(t)
	scraper := NewScraper(fake.client(t, telemetry.NewRecorderAPI()), telemetry.NewRecorderAPI())

	result, err := scraper.Scrape(context.Background(), Options{
		Campuses:        []catalog.Campus{catalog.CAMPUS_SEATTLE},
		DepartmentLinks: []string{"ee.html"},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "E E", result.Records[0].Department)
	require.Equal(t, []string{}, result.Records[0].OfferedQuarters)
	require.Empty(t, result.Errors)

	// the directory page is never requested
	require.Equal(t, int64(1), fake.requests.Load())
}

func TestScrapeDepartmentFilter(t *testing.T) {
	fake := newFakeCatalog(t)
	scraper := NewScraper(fake.client(t, telemetry.NewRecorderAPI()), telemetry.NewRecorderAPI())

	result, err := scraper.Scrape(context.Background(), Options{
		Campuses:    []catalog.Campus{catalog.CAMPUS_SEATTLE},
		Departments: []string{"Computer Science and Engineering"},
	})
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	require.Len(t, result.Records, 2)
}

func TestScrapeCancelled(t *testing.T) {
	fake := newFakeCatalog(t)
	scraper := NewScraper(fake.client(t, telemetry.NewRecorderAPI()), telemetry.NewRecorderAPI())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scraper.Scrape(ctx, Options{
		Campuses: []catalog.Campus{catalog.CAMPUS_SEATTLE},
	})
	require.ErrorIs(t, err, context.Canceled)
}
