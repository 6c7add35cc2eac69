package catalog

import (
	"regexp"
	"slices"
	"strings"
)

// every pattern here is compiled once and only ever read afterwards.
var (
	headerRe = regexp.MustCompile(`^([A-Z&]+(?: [A-Z&]+)*) (\d+[A-Z]?)(?:[\s.:,;(]|$)`)

	// (5), (1-5, max. 15), (3/5), (*, max. 12), (*-)
	creditParenRe = regexp.MustCompile(
		`\(\s*(\d{1,2}(?:\s*[-/,]\s*\d{1,2})*(?:,\s*max\.?\s*\d+)?|\*(?:[-,][^()]*)?)\s*\)`,
	)
	// 4 credits, 2-5 credits, 1 to 5 credits
	creditTextRe = regexp.MustCompile(
		`(?i)\b(\d+(?:\.\d+)?)(?:\s*(?:-|to)\s*(\d+(?:\.\d+)?))?\s+credits?\b`,
	)
	creditVariableRe = regexp.MustCompile(`(?i:\bvariable\s+credits?\b)|(?:^|[.;]\s+)(V)\.(?:\s|$)`)

	prerequisiteRe = regexp.MustCompile(`(?i)\bprerequisites?\s*:`)
	offeredRe      = regexp.MustCompile(`(?i)\boffered\s*:`)
	courseCodeRe   = regexp.MustCompile(`([A-Z&]+(?: [A-Z&]+)*) (\d{3}[A-Z]?)\b`)

	segmentDelimRe = regexp.MustCompile(`[.;:()]\s*`)
	areaSplitRe    = regexp.MustCompile(`[\s,/]+`)
	areaTokenRe    = regexp.MustCompile(`^[A-Z][A-Z&]{0,4}$`)
	sentenceEndRe  = regexp.MustCompile(`\.(?:\s|$)`)
)

// KnownAreas is the closed vocabulary of knowledge-area tags. Tags outside of
// it are still passed through when they appear next to a known one.
var KnownAreas = []string{"I&S", "NW", "VLPA", "QSR", "DIV", "C", "W"}

var conjunctions = map[string]struct{}{
	"OR":     {},
	"AND":    {},
	"EITHER": {},
	"NOT":    {},
}

type HeaderMatch struct {
	Department string
	Code       string
	// Rest is the text that follows the course code.
	Rest string
}

// MatchHeader recognizes the department and code at the start of a course
// listing, ex. "B AACT 501", "E E 235", "T ACCT 220A".
func MatchHeader(text string) (HeaderMatch, bool) {
	text = strings.TrimSpace(text)
	loc := headerRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return HeaderMatch{}, false
	}
	return HeaderMatch{
		Department: text[loc[2]:loc[3]],
		Code:       text[loc[4]:loc[5]],
		Rest:       strings.TrimSpace(text[loc[5]:]),
	}, true
}

type span struct {
	start int
	value string
}

func creditSpans(text string) []span {
	var spans []span
	for _, m := range creditParenRe.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, span{
			start: m[0],
			value: strings.TrimSpace(text[m[2]:m[3]]),
		})
	}
	for _, m := range creditTextRe.FindAllStringSubmatchIndex(text, -1) {
		value := text[m[2]:m[3]]
		if m[4] >= 0 {
			value += "-" + text[m[4]:m[5]]
		}
		spans = append(spans, span{start: m[0], value: value})
	}
	for _, m := range creditVariableRe.FindAllStringSubmatchIndex(text, -1) {
		start := m[0]
		if m[2] >= 0 {
			start = m[2]
		}
		spans = append(spans, span{start: start, value: "V"})
	}
	slices.SortStableFunc(spans, func(a, b span) int {
		return a.start - b.start
	})
	return spans
}

// MatchCredits recognizes every credit expression in the text. When there is
// more than one (ex. lecture and lab) they are joined with "/" in the order
// they appear, they are never summed.
func MatchCredits(text string) (string, bool) {
	spans := creditSpans(text)
	if len(spans) == 0 {
		return "", false
	}
	var values []string
	for _, s := range spans {
		if slices.Contains(values, s.value) {
			continue
		}
		values = append(values, s.value)
	}
	return strings.Join(values, "/"), true
}

type segment struct {
	start int
	text  string
	// afterLabel is true when the segment directly follows a colon, or lies
	// anywhere in an Offered:/Prerequisite: clause up to the end of its
	// sentence, meaning it is the value of some other labelled field.
	afterLabel bool
}

func labelEnds(text string) map[int]struct{} {
	ends := make(map[int]struct{})
	for _, re := range []*regexp.Regexp{offeredRe, prerequisiteRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			ends[loc[1]] = struct{}{}
		}
	}
	return ends
}

func segments(text string) []segment {
	labels := labelEnds(text)

	var out []segment
	prev := 0
	afterColon := false
	inClause := false
	for _, m := range segmentDelimRe.FindAllStringIndex(text, -1) {
		out = append(out, segment{
			start:      prev,
			text:       strings.TrimSpace(text[prev:m[0]]),
			afterLabel: afterColon || inClause,
		})
		afterColon = false
		switch text[m[0]] {
		case ':':
			afterColon = true
			if _, ok := labels[m[0]+1]; ok {
				inClause = true
			}
		case '.':
			// "2.0" is not the end of a sentence
			if m[1] > m[0]+1 || m[1] == len(text) {
				inClause = false
			}
		}
		prev = m[1]
	}
	out = append(out, segment{
		start:      prev,
		text:       strings.TrimSpace(text[prev:]),
		afterLabel: afterColon || inClause,
	})
	return out
}

func parseAreaList(text string) []string {
	if text == "" {
		return nil
	}
	tokens := areaSplitRe.Split(text, -1)
	known := false
	var out []string
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if !areaTokenRe.MatchString(tok) {
			return nil
		}
		if _, skip := conjunctions[tok]; skip {
			return nil
		}
		if slices.Contains(KnownAreas, tok) {
			known = true
		}
		if !slices.Contains(out, tok) {
			out = append(out, tok)
		}
	}
	if !known {
		return nil
	}
	return out
}

// areaSegments returns the segments of text that consist solely of
// knowledge-area tags.
func areaSegments(text string) []segment {
	var out []segment
	for _, seg := range segments(text) {
		if seg.afterLabel {
			continue
		}
		if parseAreaList(seg.text) != nil {
			out = append(out, seg)
		}
	}
	return out
}

// MatchAreas recognizes knowledge-area tags written as a comma or slash
// separated list, ex. "I&S/NW" or "NW, QSR". Order of appearance is kept.
func MatchAreas(text string) []string {
	out := []string{}
	for _, seg := range areaSegments(text) {
		for _, tag := range parseAreaList(seg.text) {
			if !slices.Contains(out, tag) {
				out = append(out, tag)
			}
		}
	}
	return out
}

func prerequisiteClause(text string) (string, bool) {
	loc := prerequisiteRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	clause := text[loc[1]:]
	end := offeredRe.FindStringIndex(clause)
	if end != nil {
		clause = clause[:end[0]]
	}
	return clause, true
}

func trimConjunctions(department string) string {
	words := strings.Split(department, " ")
	for len(words) > 1 {
		if _, ok := conjunctions[words[0]]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// MatchPrerequisites flattens the course codes of a prerequisite clause into a
// single ordered list.
//
// note: "A and (B or C)" becomes [A, B, C], the and/or structure is discarded.
// A structured type would be needed here to keep it.
func MatchPrerequisites(text string) []string {
	out := []string{}
	clause, ok := prerequisiteClause(text)
	if !ok {
		return out
	}
	for _, m := range courseCodeRe.FindAllStringSubmatch(clause, -1) {
		department := trimConjunctions(m[1])
		if _, isConj := conjunctions[department]; isConj {
			continue
		}
		code := department + " " + m[2]
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

var quarterTokens = []string{"Sp", "A", "W", "S"}

func parseQuarters(text string) []string {
	text = strings.TrimRight(strings.TrimSpace(text), ".")
	if text == "" {
		return nil
	}
	var out []string
	for len(text) > 0 {
		switch text[0] {
		case ' ', ',', '/':
			text = text[1:]
			continue
		}
		matched := ""
		for _, q := range quarterTokens {
			if strings.HasPrefix(text, q) {
				matched = q
				break
			}
		}
		if matched == "" {
			return nil
		}
		if !slices.Contains(out, matched) {
			out = append(out, matched)
		}
		text = text[len(matched):]
	}
	return out
}

// MatchQuarters recognizes the quarters a course is offered in, written either
// as a list ("A,W,Sp") or concatenated the way the catalog prints it ("AWSpS").
func MatchQuarters(text string) []string {
	loc := offeredRe.FindStringIndex(text)
	if loc == nil {
		return []string{}
	}
	clause := text[loc[1]:]
	if end := sentenceEndRe.FindStringIndex(clause); end != nil {
		clause = clause[:end[1]]
	}
	for _, part := range strings.Split(clause, ";") {
		quarters := parseQuarters(part)
		if quarters != nil {
			return quarters
		}
	}
	return []string{}
}

// fieldStart returns the index of the first recognizable field marker in text,
// or len(text) if there is none.
func fieldStart(text string) int {
	end := len(text)
	consider := func(idx int) {
		if idx >= 0 && idx < end {
			end = idx
		}
	}

	for _, s := range creditSpans(text) {
		consider(s.start)
	}
	if loc := prerequisiteRe.FindStringIndex(text); loc != nil {
		consider(loc[0])
	}
	if loc := offeredRe.FindStringIndex(text); loc != nil {
		consider(loc[0])
	}
	for _, seg := range areaSegments(text) {
		// only a whole sentence counts, a title may very well start with
		// something that looks like a tag.
		if seg.start == 0 || text[seg.start-1] == '(' {
			continue
		}
		consider(seg.start)
	}
	return end
}
