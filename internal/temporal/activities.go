package temporal

import (
	"context"

	"github.com/foxglove-games/greatwork/internal/game"
)

// Activities wraps the game service for Temporal's reflection-based
// activity registration: one struct, one field per collaborator.
type Activities struct {
	Game *game.Service
}

// AdvanceDigestActivity runs one digest tick and reports how much press
// it released. The tick itself is not retried by Temporal — AdvanceDigest
// is already transactional under the service's own mutex and a partial
// retry would risk double-dispatching due orders, so the activity's
// retry policy is configured for at most one attempt (see DigestWorkflow).
func (a *Activities) AdvanceDigestActivity(ctx context.Context) (DigestResult, error) {
	released, err := a.Game.AdvanceDigest()
	if err != nil {
		return DigestResult{}, err
	}
	return DigestResult{Released: len(released)}, nil
}
