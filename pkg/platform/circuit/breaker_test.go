package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_Defaults(t *testing.T) {
	b := New("audit")
	assert.Equal(t, "audit", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

// Each step is f (failure), s (success) or r (reset); open lists the
// expected IsOpen after every step.
func TestBreaker_Transitions(t *testing.T) {
	cases := []struct {
		name      string
		failures  int
		successes int
		steps     string
		open      []bool
	}{
		{"opens on the threshold failure", 3, 2, "fff", []bool{false, false, true}},
		{"success clears the failure streak", 3, 2, "ffsfff", []bool{false, false, false, false, false, true}},
		{"closes after enough successes", 1, 2, "fss", []bool{true, true, false}},
		{"failure while open restarts the success streak", 1, 3, "fssfsss", []bool{true, true, true, true, true, true, false}},
		{"reset closes immediately", 1, 2, "fr", []bool{true, false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, tc.open, len(tc.steps))
			b := New("audit", WithFailureThreshold(tc.failures), WithSuccessThreshold(tc.successes))
			for i, step := range tc.steps {
				switch step {
				case 'f':
					b.RecordFailure()
				case 's':
					b.RecordSuccess()
				case 'r':
					b.Reset()
				}
				assert.Equal(t, tc.open[i], b.IsOpen(), "after step %d (%c)", i, step)
			}
		})
	}
}

func TestBreaker_ReportsStateChangesOnce(t *testing.T) {
	b := New("audit", WithFailureThreshold(2), WithSuccessThreshold(1))

	fallback, change := b.RecordFailure()
	assert.False(t, fallback)
	assert.Equal(t, StateChange{}, change)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback)
	assert.True(t, change.Opened)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback, "open circuit keeps using the fallback")
	assert.False(t, change.Opened, "already open")

	primary, change := b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_AllowWaitsForCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := New("audit", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(func() time.Time { return now }))

	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(59 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "probe allowed once cooldown elapses")
}
