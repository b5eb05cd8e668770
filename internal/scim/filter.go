package scim

import "regexp"

// The only supported filter grammar is a single equality clause on userName
// with a quoted operand. Anything else degrades to an unfiltered page
// rather than failing the request, so a provisioning client sending a
// richer filter still gets a usable listing.
var userNameEqPattern = regexp.MustCompile(`^userName eq "([^"]+)"$`)

// FilterResult is the outcome of evaluating the filter query parameter.
// Exactly one of the three states holds: no filter was sent, the filter
// matched the supported shape (UserName set), or the filter was present but
// unsupported (Ignored set).
type FilterResult struct {
	UserName *string
	Ignored  bool
}

// EvaluateFilter parses a raw SCIM filter expression into a FilterResult.
func EvaluateFilter(raw string) FilterResult {
	if raw == "" {
		return FilterResult{}
	}
	m := userNameEqPattern.FindStringSubmatch(raw)
	if m == nil {
		return FilterResult{Ignored: true}
	}
	value := m[1]
	return FilterResult{UserName: &value}
}
