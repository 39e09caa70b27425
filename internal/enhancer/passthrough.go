package enhancer

import "context"

// Passthrough returns the base body unchanged. Useful as the default
// wiring when no narrative-enhancer endpoint is configured, and in
// tests that don't care about persona rewriting.
type Passthrough struct{}

// Enhance implements Enhancer by returning req.BaseBody verbatim.
func (Passthrough) Enhance(ctx context.Context, req Request) (string, error) {
	return req.BaseBody, nil
}
