package catalog

import (
	"fmt"
	"strings"
)

type Campus int

const (
	CAMPUS_UNKNOWN Campus = iota
	CAMPUS_BOTHELL
	CAMPUS_SEATTLE
	CAMPUS_TACOMA
)

// Campuses lists every campus in the order the catalog is traditionally exported.
var Campuses = []Campus{
	CAMPUS_BOTHELL,
	CAMPUS_SEATTLE,
	CAMPUS_TACOMA,
}

func (c Campus) String() string {
	switch c {
	case CAMPUS_BOTHELL:
		return "Bothell"
	case CAMPUS_SEATTLE:
		return "Seattle"
	case CAMPUS_TACOMA:
		return "Tacoma"
	}
	return ""
}

// ParseCampus parses a campus name case-insensitively.
func ParseCampus(name string) (Campus, error) {
	for _, c := range Campuses {
		if strings.EqualFold(strings.TrimSpace(name), c.String()) {
			return c, nil
		}
	}
	return CAMPUS_UNKNOWN, fmt.Errorf(
		"%q is an invalid campus, valid values include Bothell, Seattle, Tacoma",
		name,
	)
}

// CourseRecord is a single course listing. Slices are never nil, an
// unlisted field is an empty slice.
type CourseRecord struct {
	Campus           Campus
	Department       string
	Code             string
	Name             string
	Credits          string
	AreasOfKnowledge []string
	Prerequisites    []string
	OfferedQuarters  []string
}

// Key returns the (campus, department, code) triple that identifies a course.
func (r CourseRecord) Key() string {
	return fmt.Sprintf("%s/%s/%s", r.Campus, r.Department, r.Code)
}

// Less orders records by campus, then department, then code.
func (r CourseRecord) Less(other CourseRecord) bool {
	if r.Campus != other.Campus {
		return r.Campus < other.Campus
	}
	if r.Department != other.Department {
		return r.Department < other.Department
	}
	return r.Code < other.Code
}

// DepartmentPage is the raw content of one department's catalog page.
type DepartmentPage struct {
	Campus Campus
	// Department is the label the page was discovered under, usually the
	// anchor text on the campus directory page.
	Department string
	Link       string
	Content    string
}

// Block is the text of exactly one course listing.
type Block struct {
	// Header is the heading-level text of the listing (the bolded line on
	// the catalog pages).
	Header string
	// Body is the descriptive text that trails the header.
	Body string
}

// TextBlock creates a block out of flat text with no structural split.
func TextBlock(text string) Block {
	return Block{Header: text}
}

func (b Block) String() string {
	if b.Body == "" {
		return b.Header
	}
	return b.Header + " " + b.Body
}

type DecodeErrorKind int

const (
	KIND_HEADER_UNRECOGNIZED DecodeErrorKind = iota
	KIND_NAME_MISSING
)

func (k DecodeErrorKind) String() string {
	switch k {
	case KIND_HEADER_UNRECOGNIZED:
		return "header_unrecognized"
	case KIND_NAME_MISSING:
		return "name_missing"
	}
	return "unknown"
}

// DecodeError describes a block that could not be turned into a record.
type DecodeError struct {
	Kind DecodeErrorKind
	Raw  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode course block: %s: %q", e.Kind, e.Raw)
}

type ExtractionResult struct {
	Campus     Campus
	Department string
	Link       string
	Records    []CourseRecord
	Failures   []*DecodeError
	// Unparseable is set when the page had content but no course blocks
	// could be found in it.
	Unparseable bool
}
