package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"uwcatalog/internal/catalog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Schema int

const (
	// SCHEMA_BASE is the seven column shape without offered quarters.
	SCHEMA_BASE Schema = iota
	// SCHEMA_EXTENDED adds the "Offered" column.
	SCHEMA_EXTENDED
)

func (s Schema) String() string {
	switch s {
	case SCHEMA_BASE:
		return "base"
	case SCHEMA_EXTENDED:
		return "extended"
	}
	return ""
}

func ParseSchema(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "base":
		return SCHEMA_BASE, nil
	case "", "extended":
		return SCHEMA_EXTENDED, nil
	}
	return SCHEMA_EXTENDED, fmt.Errorf("%q is an invalid schema, valid values include base, extended", name)
}

// Columns returns the header row of a schema.
func (s Schema) Columns() []string {
	columns := []string{
		"Campus",
		"Department",
		"Code",
		"Name",
		"Credits",
		"Areas of Knowledge",
		"Prerequisites",
	}
	if s == SCHEMA_EXTENDED {
		columns = append(columns, "Offered")
	}
	return columns
}

type Options struct {
	Schema Schema
	// TitleCase title cases course names, names are written verbatim
	// otherwise.
	TitleCase bool
}

// titleCase title cases each word of a name, words already written in
// capitals (CSE, II, ASL) are kept as is.
func titleCase(name string) string {
	caser := cases.Title(language.English)
	words := strings.Split(name, " ")
	for i, word := range words {
		if isCapitalized(word) {
			continue
		}
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}

func isCapitalized(word string) bool {
	letters := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters = true
		}
	}
	return letters
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}

// Row converts a record into a row of the given schema.
func Row(record catalog.CourseRecord, options Options) []string {
	name := record.Name
	if options.TitleCase {
		name = titleCase(name)
	}

	row := []string{
		record.Campus.String(),
		record.Department,
		record.Code,
		name,
		record.Credits,
		joinList(record.AreasOfKnowledge),
		joinList(record.Prerequisites),
	}
	if options.Schema == SCHEMA_EXTENDED {
		row = append(row, joinList(record.OfferedQuarters))
	}
	return row
}

// WriteCsv writes a header row followed by one row per record.
func WriteCsv(w io.Writer, records []catalog.CourseRecord, options Options) error {
	writer := csv.NewWriter(w)
	err := writer.Write(options.Schema.Columns())
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		err = writer.Write(Row(record, options))
		if err != nil {
			return fmt.Errorf("write %s: %w", record.Key(), err)
		}
	}
	writer.Flush()
	return writer.Error()
}
