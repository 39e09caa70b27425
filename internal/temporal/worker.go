package temporal

import (
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/foxglove-games/greatwork/internal/game"
)

// TaskQueue is the Temporal task queue the digest worker and its
// schedule both target.
const TaskQueue = "greatwork-digest-queue"

// StartWorker connects to Temporal and starts the digest-cadence
// worker. gameSvc is the single Service instance the whole process
// shares; AdvanceDigestActivity runs against it under its own mutex.
func StartWorker(gameSvc *game.Service) error {
	c, err := client.Dial(client.Options{
		HostPort: "127.0.0.1:7233",
	})
	if err != nil {
		return err
	}
	defer c.Close()

	w := worker.New(c, TaskQueue, worker.Options{})

	acts := &Activities{Game: gameSvc}

	w.RegisterWorkflow(DigestWorkflow)
	w.RegisterActivity(acts.AdvanceDigestActivity)

	log.Println("Temporal worker started on", TaskQueue)
	return w.Run(worker.InterruptCh())
}
