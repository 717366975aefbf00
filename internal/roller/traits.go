package roller

import (
	"strings"
)

var separators = strings.NewReplacer("-", " ", "_", " ")

// Normalize lower-cases text, turns hyphens and underscores into spaces and
// collapses whitespace runs. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	s := separators.Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(s), " ")
}

// TraitList is an ordered list of normalized traits. Earlier entries win.
type TraitList []string

// ParseTraitList reads one trait per line, as typed into the config.
func ParseTraitList(raw string) TraitList {
	var list TraitList
	for _, line := range strings.Split(raw, "\n") {
		if t := Normalize(line); t != "" {
			list = append(list, t)
		}
	}
	return list
}

// String joins the list back into its config form.
func (l TraitList) String() string {
	return strings.Join(l, "\n")
}

// first returns the first trait contained in text.
func (l TraitList) first(text string) (string, bool) {
	for _, t := range l {
		if strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}

// MatchKind classifies one capture.
type MatchKind int

const (
	None MatchKind = iota
	Partial
	Combo
)

func (k MatchKind) String() string {
	switch k {
	case Partial:
		return "partial"
	case Combo:
		return "combo"
	}
	return "none"
}

// MatchResult is the outcome for one capture. Required is set for Partial
// and Combo, Desired only for Combo.
type MatchResult struct {
	Kind     MatchKind
	Required string
	Desired  string
}

// Match scans required in order, then desired in order; first hit wins in both.
func Match(text string, required, desired TraitList) MatchResult {
	norm := Normalize(text)

	a, ok := required.first(norm)
	if !ok {
		return MatchResult{Kind: None}
	}
	b, ok := desired.first(norm)
	if !ok {
		return MatchResult{Kind: Partial, Required: a}
	}
	return MatchResult{Kind: Combo, Required: a, Desired: b}
}

// ocrPreviewLen caps OCR text echoed into the activity log.
const ocrPreviewLen = 40

// Preview squashes whitespace and keeps the first n characters.
func Preview(text string, n int) string {
	r := []rune(strings.Join(strings.Fields(text), " "))
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
