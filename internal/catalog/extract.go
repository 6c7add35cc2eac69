package catalog

import (
	"errors"
	"strings"
)

// Extract decodes every course listing on a department page. A listing that
// fails to decode is kept as a failure and does not stop the rest of the page
// from being decoded.
func Extract(page DepartmentPage, options Options) ExtractionResult {
	result := ExtractionResult{
		Campus:     page.Campus,
		Department: page.Department,
		Link:       page.Link,
		Records:    []CourseRecord{},
		Failures:   []*DecodeError{},
	}

	decoder := NewDecoder(page.Campus, options)

	blocks := 0
	for block := range Segment(page.Content) {
		blocks++

		record, err := decoder.Decode(block)
		if err != nil {
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				decodeErr = &DecodeError{Kind: KIND_HEADER_UNRECOGNIZED, Raw: block.String()}
			}
			result.Failures = append(result.Failures, decodeErr)
			continue
		}
		record.Campus = page.Campus
		result.Records = append(result.Records, record)
	}

	if blocks == 0 && strings.TrimSpace(page.Content) != "" {
		result.Unparseable = true
	}

	return result
}
