package dpp

import (
	"encoding/json"
	"testing"

	"cf_buddy/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceIndex_Add(t *testing.T) {
	p := problem(100, "B", 1500)
	ix := NewReferenceIndex()
	ix.Add("tourist", []model.Submission{
		accepted(3, p),
		accepted(2, p),
		{ID: 1, Problem: problem(101, "A", 800), Verdict: model.VerdictWrongAnswer},
		accepted(4, model.Problem{Index: "A"}),
	})
	ix.Add("jiangly", []model.Submission{accepted(7, p)})

	solvers := ix.SolversOf(p.Key())
	require.Len(t, solvers, 2)
	assert.Equal(t, model.ReferenceSolverEntry{Handle: "tourist", SubmissionID: 3, ContestID: 100, ProblemIndex: "B"}, solvers[0])
	assert.Equal(t, "jiangly", solvers[1].Handle)
	assert.Equal(t, 1, ix.Len())
	assert.False(t, ix.Degraded())

	ix.MarkFailed("orzdevinwang")
	assert.True(t, ix.Degraded())
}

func TestReferenceIndex_NilAndEmptyAreDegraded(t *testing.T) {
	var nilIx *ReferenceIndex
	assert.True(t, nilIx.Degraded())
	assert.Nil(t, nilIx.SolversOf(model.ProblemKey{ContestID: 1, Index: "A"}))
	assert.True(t, NewReferenceIndex().Degraded())
}

func TestReferenceIndex_JSONRoundTripKeepsKeys(t *testing.T) {
	p := problem(1850, "C1", 1200)
	ix := NewReferenceIndex()
	ix.Add("tourist", []model.Submission{accepted(9, p)})

	raw, err := json.Marshal(ix)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"1850-C1"`)

	var back ReferenceIndex
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ix.SolversOf(p.Key()), back.SolversOf(p.Key()))
}

func TestSolvedFrom(t *testing.T) {
	a, b := problem(1, "A", 800), problem(2, "B", 900)
	keys := SolvedFrom([]model.Submission{
		accepted(1, a),
		{ID: 2, Problem: b, Verdict: model.VerdictTimeLimitExceeded},
	})
	assert.True(t, keys.Has(a.Key()))
	assert.False(t, keys.Has(b.Key()))

	var none SolvedKeys
	assert.False(t, none.Has(a.Key()))
}
