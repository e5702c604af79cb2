package pagedata

import "context"

// Sanitizer cleans untrusted post content before it is stored.
type Sanitizer interface {
	Sanitize(content string) string
}

type trustedKey struct{}

// WithTrustedContent marks saves made with ctx as trusted editor output;
// stores skip their Sanitizer for them.
func WithTrustedContent(ctx context.Context) context.Context {
	return context.WithValue(ctx, trustedKey{}, true)
}

// IsTrustedContent reports whether ctx was marked by WithTrustedContent.
func IsTrustedContent(ctx context.Context) bool {
	v, _ := ctx.Value(trustedKey{}).(bool)
	return v
}

// SanitizeUnlessTrusted applies s to content unless ctx is trusted or s is nil.
func SanitizeUnlessTrusted(ctx context.Context, s Sanitizer, content string) string {
	if s == nil || IsTrustedContent(ctx) {
		return content
	}
	return s.Sanitize(content)
}
