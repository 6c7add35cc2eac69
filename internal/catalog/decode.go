package catalog

import (
	"regexp"
	"slices"
	"strings"
)

type Options struct {
	// Extended enables decoding of the quarters a course is offered in.
	Extended bool
}

// Decoder turns course blocks into records for a single campus. It holds no
// mutable state, a Decoder may be shared freely.
type Decoder struct {
	campus  Campus
	options Options
}

func NewDecoder(campus Campus, options Options) Decoder {
	return Decoder{campus: campus, options: options}
}

var collapseWhitespaceRe = regexp.MustCompile(`\s+`)

func normalizeSpace(text string) string {
	return strings.TrimSpace(collapseWhitespaceRe.ReplaceAllString(text, " "))
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

// Decode decodes a single course block. The returned error is always a
// *DecodeError.
func (d Decoder) Decode(block Block) (CourseRecord, error) {
	header := normalizeSpace(block.Header)
	body := normalizeSpace(block.Body)

	match, ok := MatchHeader(header)
	if !ok {
		return CourseRecord{}, &DecodeError{
			Kind: KIND_HEADER_UNRECOGNIZED,
			Raw:  block.String(),
		}
	}

	titleEnd := fieldStart(match.Rest)
	name := strings.TrimRight(strings.TrimSpace(match.Rest[:titleEnd]), " .,;:")
	if name == "" {
		return CourseRecord{}, &DecodeError{
			Kind: KIND_NAME_MISSING,
			Raw:  block.String(),
		}
	}
	remaining := match.Rest[titleEnd:]

	record := CourseRecord{
		Campus:           d.campus,
		Department:       match.Department,
		Code:             match.Code,
		Name:             name,
		AreasOfKnowledge: []string{},
		Prerequisites:    []string{},
		OfferedQuarters:  []string{},
	}

	// the header and body are scanned separately, a list of tags trailing the
	// credits in the header is otherwise glued onto the first body sentence.
	credits, ok := MatchCredits(remaining)
	if !ok {
		credits, _ = MatchCredits(body)
	}
	record.Credits = credits

	record.AreasOfKnowledge = appendUnique(record.AreasOfKnowledge, MatchAreas(remaining)...)
	record.AreasOfKnowledge = appendUnique(record.AreasOfKnowledge, MatchAreas(body)...)

	record.Prerequisites = appendUnique(record.Prerequisites, MatchPrerequisites(remaining)...)
	record.Prerequisites = appendUnique(record.Prerequisites, MatchPrerequisites(body)...)

	if d.options.Extended {
		quarters := MatchQuarters(remaining)
		if len(quarters) == 0 {
			quarters = MatchQuarters(body)
		}
		record.OfferedQuarters = quarters
	}

	return record, nil
}
