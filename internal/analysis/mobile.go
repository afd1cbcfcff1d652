package analysis

import (
	"regexp"

	"github.com/dvloznov/spending-reports/internal/domain"
)

// mobilePattern matches four digit groups split by single non-word runes at
// the end of a description, e.g. "+7 921 111-22-33". Letters of any script
// count as word characters. A single trailing newline is tolerated.
var mobilePattern = regexp.MustCompile(`(?i)\p{Nd}+[^\p{L}\p{N}_]\p{Nd}+[^\p{L}\p{N}_]\p{Nd}+[^\p{L}\p{N}_]\p{Nd}+\n?$`)

// IsMobileDescription reports whether s ends with a phone-number-like pattern.
func IsMobileDescription(s string) bool {
	return mobilePattern.MatchString(s)
}

// FindMobile returns the rows whose description ends with a phone number.
// The result is never nil.
func FindMobile(rows domain.Table) []domain.OperationView {
	out := make([]domain.OperationView, 0)
	for _, op := range rows {
		if IsMobileDescription(op.Description) {
			out = append(out, op.View())
		}
	}
	return out
}
