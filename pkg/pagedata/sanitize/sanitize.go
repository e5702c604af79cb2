// Package sanitize provides the content sanitizer repositories apply to
// untrusted post content.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

// Policy is a pagedata.Sanitizer backed by a bluemonday policy.
type Policy struct {
	policy *bluemonday.Policy
}

// New returns the default policy: user generated content with class, data
// attributes and inline styling allowed.
func New() *Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowDataAttributes()
	return &Policy{policy: p}
}

// Strict returns a policy that strips all markup.
func Strict() *Policy {
	return &Policy{policy: bluemonday.StrictPolicy()}
}

// Sanitize implements pagedata.Sanitizer.
func (p *Policy) Sanitize(content string) string {
	return p.policy.Sanitize(content)
}

var _ pagedata.Sanitizer = (*Policy)(nil)
