package pipeline

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/docgate/docgate/constants"
)

func TestJobTrackWalksFullPath(t *testing.T) {
	var buf bytes.Buffer
	track := newJobTrack(uuid.New(), slog.New(slog.NewTextHandler(&buf, nil)))

	for _, next := range []constants.JobState{
		constants.StateAcquiring,
		constants.StateClassifying,
		constants.StateRouted,
		constants.StateExtracting,
		constants.StateVerifying,
		constants.StateDone,
	} {
		track.advance(next)
		assert.Equal(t, next, track.state)
	}

	assert.NotContains(t, buf.String(), "pipeline.state.illegal")
}

func TestJobTrackLogsIllegalMoveAndKeepsGoing(t *testing.T) {
	var buf bytes.Buffer
	track := newJobTrack(uuid.New(), slog.New(slog.NewTextHandler(&buf, nil)))

	track.advance(constants.StateVerifying)

	assert.Contains(t, buf.String(), "pipeline.state.illegal")
	// The track still moves so the document reaches a terminal state.
	assert.Equal(t, constants.StateVerifying, track.state)

	track.advance(constants.StateDone)
	assert.Equal(t, constants.StateDone, track.state)
}

func TestJobTrackShortCircuitToDone(t *testing.T) {
	var buf bytes.Buffer
	track := newJobTrack(uuid.New(), slog.New(slog.NewTextHandler(&buf, nil)))

	track.advance(constants.StateAcquiring)
	track.advance(constants.StateDone)

	assert.Equal(t, constants.StateDone, track.state)
	assert.NotContains(t, buf.String(), "pipeline.state.illegal")
}
