package temporal

// DigestRequest is the (empty) argument to DigestWorkflow; the digest
// tick takes no parameters of its own, but a named request type keeps
// the workflow signature stable if one is ever needed.
type DigestRequest struct{}

// DigestResult summarises one digest tick for the schedule's history.
type DigestResult struct {
	Released int `json:"released"`
}
