package complete

import (
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/yaklabco/gosage/pkg/sagedoc"
	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// minFuzzyWord is the shortest word fuzzy matching is attempted for.
const minFuzzyWord = 3

var declRHS = regexp.MustCompile(`\.<[^<>]*>\s*=\s*\w*$`)

// FunctionMatcher completes names of documented Sage functions.
type FunctionMatcher struct {
	cat       *sagedoc.Catalog
	fuzzy     bool
	threshold float32
}

// NewFunctionMatcher creates a matcher over cat. When fuzzy is set, names
// within threshold Jaro-Winkler similarity of the typed word are offered as
// replacements.
func NewFunctionMatcher(cat *sagedoc.Catalog, fuzzy bool, threshold float32) *FunctionMatcher {
	return &FunctionMatcher{cat: cat, fuzzy: fuzzy, threshold: threshold}
}

func (*FunctionMatcher) ID() string           { return "function-name" }
func (*FunctionMatcher) Kind() spanindex.Kind { return spanindex.KindPassthrough }
func (*FunctionMatcher) Priority() int        { return 30 }

// Match implements Matcher.
func (m *FunctionMatcher) Match(w Window) (Proposal, bool) {
	word := trailingIdent(w.Text)
	if word == "" {
		return Proposal{}, false
	}
	before := w.Text[:len(w.Text)-len(word)]
	if strings.HasSuffix(before, ".") || declRHS.MatchString(statementTail(w.Text)) {
		return Proposal{}, false
	}

	cursor := w.Cursor()
	p := Proposal{Matched: len(word)}
	for _, e := range m.cat.WithPrefix(word) {
		if e.Name == word {
			continue
		}
		p.Suggestions = append(p.Suggestions, Suggestion{
			Label:      e.Name,
			Detail:     e.Signature,
			InsertText: e.Name[len(word):],
			Replace:    source.Point(cursor),
		})
	}

	if m.fuzzy && len(word) >= minFuzzyWord {
		wordRange := source.NewRange(cursor-len(word), cursor)
		for _, e := range m.cat.Entries() {
			if strings.HasPrefix(e.Name, word) {
				continue
			}
			sim, err := edlib.StringsSimilarity(word, e.Name, edlib.JaroWinkler)
			if err != nil || sim < m.threshold {
				continue
			}
			p.Suggestions = append(p.Suggestions, Suggestion{
				Label:      e.Name,
				Detail:     e.Signature,
				InsertText: e.Name,
				Replace:    wordRange,
				Fuzzy:      true,
			})
		}
	}

	if len(p.Suggestions) == 0 {
		return Proposal{}, false
	}
	return p, true
}
