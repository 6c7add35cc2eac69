package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchHeader(t *testing.T) {
	cases := []struct {
		text       string
		ok         bool
		department string
		code       string
		rest       string
	}{
		{text: "B AACT 501 Accounting Theory", ok: true, department: "B AACT", code: "501", rest: "Accounting Theory"},
		{text: "E E 235 Continuous Time Linear Systems.", ok: true, department: "E E", code: "235", rest: "Continuous Time Linear Systems."},
		{text: "T ACCT 220A Managerial Accounting", ok: true, department: "T ACCT", code: "220A", rest: "Managerial Accounting"},
		{text: "  CSE 142 A Survey (4)", ok: true, department: "CSE", code: "142", rest: "A Survey (4)"},
		{text: "B&O 101.", ok: true, department: "B&O", code: "101", rest: "."},
		{text: "CSE 142", ok: true, department: "CSE", code: "142", rest: ""},
		{text: "Accounting Theory", ok: false},
		{text: "cse 142 Computer Programming I", ok: false},
		{text: "", ok: false},
	}

	for _, test := range cases {
		match, ok := MatchHeader(test.text)
		require.Equal(t, test.ok, ok, test.text)
		if !ok {
			continue
		}
		require.Equal(t, test.department, match.Department, test.text)
		require.Equal(t, test.code, match.Code, test.text)
		require.Equal(t, test.rest, match.Rest, test.text)
	}
}

func TestMatchCredits(t *testing.T) {
	cases := []struct {
		text     string
		expected string
		ok       bool
	}{
		{text: "(5) NW, QSR", expected: "5", ok: true},
		{text: "(1-5, max. 15)", expected: "1-5, max. 15", ok: true},
		{text: "(3/5) I&S", expected: "3/5", ok: true},
		{text: "(*, max. 12)", expected: "*, max. 12", ok: true},
		{text: "4 credits.", expected: "4", ok: true},
		{text: "2-5 credits.", expected: "2-5", ok: true},
		{text: "1 to 5 credits.", expected: "1-5", ok: true},
		{text: "Variable credit.", expected: "V", ok: true},
		{text: "Independent study. V.", expected: "V", ok: true},
		{text: "3 credits lecture, 2 credits lab.", expected: "3/2", ok: true},
		{text: "History (2000-present)", ok: false},
		{text: "No credit information here.", ok: false},
	}

	for _, test := range cases {
		credits, ok := MatchCredits(test.text)
		require.Equal(t, test.ok, ok, test.text)
		require.Equal(t, test.expected, credits, test.text)
	}
}

func TestMatchAreas(t *testing.T) {
	cases := []struct {
		text     string
		expected []string
	}{
		{text: "5 credits. I&S/NW.", expected: []string{"I&S", "NW"}},
		{text: "(4) NW, QSR", expected: []string{"NW", "QSR"}},
		{text: "VLPA/I&S, DIV", expected: []string{"VLPA", "I&S", "DIV"}},
		{text: "FOO/NW.", expected: []string{"FOO", "NW"}},
		{text: "NW/NW.", expected: []string{"NW"}},
		{text: "TBA.", expected: []string{}},
		{text: "Offered: W.", expected: []string{}},
		{text: "Offered: jointly with ESRM 427; W.", expected: []string{}},
		{text: "Offered: jointly with ART H 361; A, W.", expected: []string{}},
		{text: "Offered: jointly with JSIS 300; C.", expected: []string{}},
		{text: "Prerequisite: minimum grade of 2.0 in CSE 142; C. I&S/NW.", expected: []string{"I&S", "NW"}},
		{text: "Offered: jointly with ESRM 427; W. NW", expected: []string{"NW"}},
		{text: "Programming in C.", expected: []string{}},
		{text: "", expected: []string{}},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, MatchAreas(test.text), test.text)
	}
}

func TestMatchPrerequisites(t *testing.T) {
	cases := []struct {
		text     string
		expected []string
	}{
		{
			text:     "Prerequisite: AMATH 351, CSE 142, CSE 143, MATH 136, MATH 307, PHYS 122.",
			expected: []string{"AMATH 351", "CSE 142", "CSE 143", "MATH 136", "MATH 307", "PHYS 122"},
		},
		{
			text:     "Prerequisite: minimum grade of 2.0 in either CSE 123 or CSE 143.",
			expected: []string{"CSE 123", "CSE 143"},
		},
		{
			text:     "Prerequisites: CSE 142 OR CSE 143; MATH 126.",
			expected: []string{"CSE 142", "CSE 143", "MATH 126"},
		},
		{
			text:     "Prerequisite: E E 215 and E E 215.",
			expected: []string{"E E 215"},
		},
		{
			text:     "Prerequisite: CSE 142. Offered: jointly with INFO 100; AWSp.",
			expected: []string{"CSE 142"},
		},
		{
			text:     "Covers CSE 142 material again.",
			expected: []string{},
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, MatchPrerequisites(test.text), test.text)
	}
}

func TestMatchQuarters(t *testing.T) {
	cases := []struct {
		text     string
		expected []string
	}{
		{text: "Offered: A,W,Sp.", expected: []string{"A", "W", "Sp"}},
		{text: "Offered: AWSpS.", expected: []string{"A", "W", "Sp", "S"}},
		{text: "Offered: jointly with CSE 142; WSp.", expected: []string{"W", "Sp"}},
		{text: "Offered: Sp. More text after.", expected: []string{"Sp"}},
		{text: "Offered: Spring.", expected: []string{}},
		{text: "Offered: jointly with CSE 142.", expected: []string{}},
		{text: "No schedule.", expected: []string{}},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, MatchQuarters(test.text), test.text)
	}
}
