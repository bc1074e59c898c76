package repair

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID_Sortable(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := NewSessionID(now)
	b := NewSessionID(now.Add(time.Second))

	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestSession_Record(t *testing.T) {
	now := time.Now()
	s := NewSession("id", "calc.py", "print(4)\n", "should print 5", "5", 2, now)

	require.NoError(t, s.Record(Attempt{Index: 1, Code: "print(4)\n"}))

	err := s.Record(Attempt{Index: 3})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeAttemptOutOfSequence))

	require.NoError(t, s.Record(Attempt{Index: 2}))
	err = s.Record(Attempt{Index: 3})
	assert.True(t, IsCode(err, CodeAttemptOutOfSequence), "index beyond max must be rejected")

	assert.Equal(t, 2, s.AttemptsUsed())
}

func TestSession_RecordAfterFinish(t *testing.T) {
	s := NewSession("id", "a.py", "x", "", "", 3, time.Now())
	s.Finish(OutcomeAdapterFailed, "", time.Now())

	err := s.Record(Attempt{Index: 1})
	assert.True(t, IsCode(err, CodeAttemptOutOfSequence))
}

func TestSession_FinalContent(t *testing.T) {
	s := NewSession("id", "a.py", "v0", "", "", 3, time.Now())
	assert.Equal(t, "v0", s.FinalContent())
	assert.False(t, s.Wrote())

	require.NoError(t, s.Record(Attempt{Index: 1, PatchRequested: true, Candidate: "v1", Applied: true}))
	require.NoError(t, s.Record(Attempt{Index: 2, PatchRequested: true, Candidate: "v2"}))

	assert.Equal(t, "v1", s.FinalContent(), "unapplied candidates never become final content")
	assert.True(t, s.Wrote())
	assert.Equal(t, "v0", s.Original())

	p, ok := s.Attempts()[1].Patch()
	assert.True(t, ok)
	assert.Equal(t, "v2", p)
}

func TestSession_AttemptsIsCopy(t *testing.T) {
	s := NewSession("id", "a.py", "v0", "", "", 3, time.Now())
	require.NoError(t, s.Record(Attempt{Index: 1, Code: "v0"}))

	got := s.Attempts()
	got[0].Code = "mutated"

	last, ok := s.LastAttempt()
	require.True(t, ok)
	assert.Equal(t, "v0", last.Code)
}

func TestNewSession_DefaultsBudget(t *testing.T) {
	s := NewSession("id", "a.py", "", "", "", 0, time.Now())
	assert.Equal(t, DefaultMaxAttempts, s.MaxAttempts)
	assert.Equal(t, OutcomePending, s.Outcome)
}
