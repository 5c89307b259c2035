package webarchive

// Options configures Extract per §6.2. The zero value is None: every
// sub-resource is persisted. Future options must be additive.
type Options struct {
	// IgnoreJavaScriptFiles drops any sub-resource whose MIME type is
	// text/javascript, application/javascript or application/x-javascript,
	// and blanks every reference to it in the rewritten document instead
	// of pointing at a written file.
	IgnoreJavaScriptFiles bool
}

var javaScriptMIMETypes = map[string]bool{
	"text/javascript":          true,
	"application/javascript":   true,
	"application/x-javascript": true,
}
