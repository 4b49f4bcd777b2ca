package content

import (
	"strings"

	"golang.org/x/text/cases"
)

// FindTerm returns the first term of type t whose name matches name ignoring
// case and surrounding space.
func FindTerm(terms []Term, t TermType, name string) (Term, bool) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	for _, term := range terms {
		if term.Type == t && fold.String(strings.TrimSpace(term.Name)) == want {
			return term, true
		}
	}
	return Term{}, false
}
