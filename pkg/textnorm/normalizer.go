// Package textnorm canonicalizes free text before fuzzy matching.
//
// A Normalizer lowercases, folds accents, expands whole-word abbreviations in
// a fixed order, drops filler words and collapses whitespace. Output is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
package textnorm

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Replacement rewrites one whole word (or compound token such as "w/o").
type Replacement struct {
	Match   string `json:"match"`
	Replace string `json:"replace"`
}

// Profile is an ordered replacement table plus a filler-word list.
// Compound matches must come before the shorter words they contain.
type Profile struct {
	Replacements []Replacement `json:"replacements"`
	Fillers      []string      `json:"fillers"`
}

// Rules groups the profiles used by the resolver and dispatcher.
type Rules struct {
	Exam     Profile `json:"exam"`
	General  Profile `json:"general"`
	Location Profile `json:"location"`
}

var abbreviations = []Replacement{
	{Match: "w/o", Replace: "without"},
	{Match: "wo", Replace: "without"},
	{Match: "w", Replace: "with"},
	{Match: "iv", Replace: "intravenous"},
}

var ordinals = []Replacement{
	{Match: "first", Replace: "1st"},
	{Match: "second", Replace: "2nd"},
	{Match: "third", Replace: "3rd"},
	{Match: "fourth", Replace: "4th"},
	{Match: "fifth", Replace: "5th"},
	{Match: "sixth", Replace: "6th"},
	{Match: "seventh", Replace: "7th"},
	{Match: "eighth", Replace: "8th"},
	{Match: "ninth", Replace: "9th"},
	{Match: "tenth", Replace: "10th"},
}

// DefaultRules returns the built-in profiles.
func DefaultRules() Rules {
	return Rules{
		Exam: Profile{
			Replacements: abbreviations,
			Fillers:      []string{"exam", "study", "scan", "procedure"},
		},
		General: Profile{
			Replacements: abbreviations,
			Fillers:      []string{"exam", "study"},
		},
		Location: Profile{
			Replacements: ordinals,
		},
	}
}

// LoadRules reads profiles from a JSON file. Profiles missing from the file
// keep their defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read normalization rules: %w", err)
	}

	var raw struct {
		Exam     *Profile `json:"exam"`
		General  *Profile `json:"general"`
		Location *Profile `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return rules, fmt.Errorf("failed to parse normalization rules: %w", err)
	}
	if raw.Exam != nil {
		rules.Exam = *raw.Exam
	}
	if raw.General != nil {
		rules.General = *raw.General
	}
	if raw.Location != nil {
		rules.Location = *raw.Location
	}
	return rules, nil
}

type compiledReplacement struct {
	re      *regexp.Regexp
	replace string
}

// Normalizer applies one Profile.
type Normalizer struct {
	replacements []compiledReplacement
	fillers      *regexp.Regexp
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// New compiles a profile. It rejects tables whose outputs would be rewritten
// again on a second pass, since that breaks idempotence.
func New(p Profile) (*Normalizer, error) {
	n := &Normalizer{}
	for _, r := range p.Replacements {
		match := strings.ToLower(strings.TrimSpace(r.Match))
		if match == "" {
			return nil, fmt.Errorf("replacement with empty match")
		}
		n.replacements = append(n.replacements, compiledReplacement{
			re:      wholeWord(match),
			replace: strings.ToLower(r.Replace),
		})
	}

	var fillers []string
	for _, f := range p.Fillers {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			fillers = append(fillers, regexp.QuoteMeta(f))
		}
	}
	if len(fillers) > 0 {
		n.fillers = regexp.MustCompile(`\b(?:` + strings.Join(fillers, "|") + `)\b`)
	}

	for _, r := range n.replacements {
		for _, other := range n.replacements {
			if other.re.MatchString(r.replace) {
				return nil, fmt.Errorf("replacement output %q is matched by %q", r.replace, other.re.String())
			}
		}
		if n.fillers != nil && n.fillers.MatchString(r.replace) {
			return nil, fmt.Errorf("replacement output %q contains a filler word", r.replace)
		}
	}
	return n, nil
}

// MustNew is New for built-in profiles.
func MustNew(p Profile) *Normalizer {
	n, err := New(p)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize returns the canonical form of text, or "" when text has no usable signal.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	s := collapseSpace(strings.ToLower(text))
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}

	for _, r := range n.replacements {
		s = r.re.ReplaceAllLiteralString(s, r.replace)
	}
	if n.fillers != nil {
		s = n.fillers.ReplaceAllLiteralString(s, " ")
	}

	return collapseSpace(s)
}

// collapseSpace joins words with single ASCII spaces. Any Unicode space
// (NBSP, em space, vertical tab) separates words.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wholeWord(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
}

// Set bundles the three profiles.
type Set struct {
	Exam     *Normalizer
	General  *Normalizer
	Location *Normalizer
}

// NewSet compiles every profile in rules.
func NewSet(rules Rules) (*Set, error) {
	exam, err := New(rules.Exam)
	if err != nil {
		return nil, fmt.Errorf("exam profile: %w", err)
	}
	general, err := New(rules.General)
	if err != nil {
		return nil, fmt.Errorf("general profile: %w", err)
	}
	location, err := New(rules.Location)
	if err != nil {
		return nil, fmt.Errorf("location profile: %w", err)
	}
	return &Set{Exam: exam, General: general, Location: location}, nil
}

// DefaultSet compiles DefaultRules.
func DefaultSet() *Set {
	set, err := NewSet(DefaultRules())
	if err != nil {
		panic(err)
	}
	return set
}
