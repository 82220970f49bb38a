package audit

// UnknownConstraintPolicy decides how constraints of an unrecognised type
// affect a requirement.
type UnknownConstraintPolicy string

const (
	// FailOpen treats unknown constraints as satisfied.
	FailOpen UnknownConstraintPolicy = "open"
	// FailClosed treats unknown constraints as unsatisfied.
	FailClosed UnknownConstraintPolicy = "closed"
)

// DefaultSuggestionLimit caps suggestions per group when none is configured.
const DefaultSuggestionLimit = 5

// Options are the behaviour switches resolved from configuration and
// feature flags before an evaluation starts.
type Options struct {
	// GroupedStrict requires every group of a grouped requirement to be
	// satisfied in addition to the credit total.
	GroupedStrict bool

	// UnknownConstraints selects fail-open or fail-closed.
	UnknownConstraints UnknownConstraintPolicy

	// SuggestionLimit caps suggestions per group. Zero or less means
	// DefaultSuggestionLimit.
	SuggestionLimit int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		GroupedStrict:      true,
		UnknownConstraints: FailOpen,
		SuggestionLimit:    DefaultSuggestionLimit,
	}
}

func (o Options) suggestionLimit() int {
	if o.SuggestionLimit <= 0 {
		return DefaultSuggestionLimit
	}
	return o.SuggestionLimit
}
