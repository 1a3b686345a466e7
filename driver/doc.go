// Package driver provides an LR parser driven by a compiled grammar. The
// driver pulls tokens from a TokenStream, keeps exactly one look-ahead token,
// and calls an optional SemanticActionSet on every shift, reduce, and error
// event.
package driver

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'lapis.driver'.
func tracer() tracing.Trace {
	return tracing.Select("lapis.driver")
}
