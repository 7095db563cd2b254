package complete

import "github.com/yaklabco/gosage/pkg/sagedoc"

// DefaultFuzzyThreshold is the Jaro-Winkler similarity a misspelled name
// must reach to be offered.
const DefaultFuzzyThreshold = 0.85

// MatcherOptions configures the built-in matchers.
type MatcherOptions struct {
	Fuzzy          bool
	FuzzyThreshold float32
}

// DefaultMatcherOptions returns the built-in matcher settings.
func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{Fuzzy: true, FuzzyThreshold: DefaultFuzzyThreshold}
}

// DefaultCatalog returns a catalog with the built-in matchers in priority
// order.
func DefaultCatalog(opts MatcherOptions) *Catalog {
	docs := sagedoc.Default()
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}

	cat := NewCatalog()
	cat.Register(OperatorMatcher{})
	cat.Register(NewDeclarationMatcher(docs))
	cat.Register(NewFunctionMatcher(docs, opts.Fuzzy, opts.FuzzyThreshold))
	return cat
}
