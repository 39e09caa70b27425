// Package enhancer defines the narrative-enhancer port: a synchronous,
// timeout-bound external call that rewrites a press body in a
// persona's voice, a single-method port since the enhancer has one
// verb rather than a dispatch lifecycle.
package enhancer

import "context"

// Request carries everything a call to Enhance needs to rewrite one
// press body.
type Request struct {
	ReleaseType   string
	BaseBody      string
	Context       map[string]any
	PersonaName   string
	PersonaTraits []string
}

// Enhancer rewrites a press release body. Implementations must respect
// ctx's deadline and return an error (wrapped as gameerr.EnhancerFailure
// by the caller) rather than blocking past it.
type Enhancer interface {
	Enhance(ctx context.Context, req Request) (string, error)
}

// Result is what a successful call contributes to a press release's
// metadata (: "metadata gains an llm sub-map").
type Result struct {
	Body string
	LLM  map[string]any
}
