package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStateLinearChain(t *testing.T) {
	chain := []JobState{
		StateQueued,
		StateAcquiring,
		StateClassifying,
		StateRouted,
		StateExtracting,
		StateVerifying,
		StateDone,
	}
	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, chain[i].CanTransitionTo(chain[i+1]),
			"%s -> %s should be legal", chain[i], chain[i+1])
	}
}

func TestJobStateShortCircuitToDone(t *testing.T) {
	for _, s := range []JobState{
		StateQueued, StateAcquiring, StateClassifying,
		StateRouted, StateExtracting, StateVerifying,
	} {
		assert.True(t, s.CanTransitionTo(StateDone), "%s -> DONE should be legal", s)
	}
}

func TestJobStateIllegalMoves(t *testing.T) {
	cases := []struct {
		from, to JobState
	}{
		{StateQueued, StateClassifying},   // skips acquisition
		{StateAcquiring, StateRouted},     // skips classification
		{StateClassifying, StateVerifying}, // skips routing and extraction
		{StateRouted, StateVerifying},     // skips extraction
		{StateExtracting, StateRouted},    // backward
		{StateVerifying, StateExtracting}, // backward
		{StateDone, StateQueued},          // DONE is terminal
		{StateDone, StateDone},
		{StateQueued, StateQueued}, // no self-loops
	}
	for _, tc := range cases {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestJobStateUnknownState(t *testing.T) {
	assert.False(t, JobState("REWINDING").CanTransitionTo(StateDone))
	assert.False(t, StateQueued.CanTransitionTo(JobState("REWINDING")))
}
