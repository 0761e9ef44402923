package pipeline

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/docgate/docgate/constants"
)

// jobTrack walks one document through the job state machine. Every move is
// checked against the transition table; an illegal move is a programming bug
// and is logged loudly, but the run keeps going so the document still reaches
// a terminal result.
type jobTrack struct {
	id     uuid.UUID
	state  constants.JobState
	logger *slog.Logger
}

func newJobTrack(id uuid.UUID, logger *slog.Logger) *jobTrack {
	return &jobTrack{id: id, state: constants.StateQueued, logger: logger}
}

func (t *jobTrack) advance(next constants.JobState) {
	if !t.state.CanTransitionTo(next) {
		t.logger.Error("pipeline.state.illegal",
			"job_id", t.id,
			"from", string(t.state),
			"to", string(next))
	} else {
		t.logger.Debug("pipeline.state",
			"job_id", t.id,
			"from", string(t.state),
			"to", string(next))
	}
	t.state = next
}
