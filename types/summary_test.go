package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryLevel(t *testing.T) {
	assert.Equal(t, 10, SummaryLevel10.Period())
	assert.Equal(t, 100, SummaryLevel100.Period())
	assert.Equal(t, 1000, SummaryLevel1000.Period())
	assert.Equal(t, 0, SummaryLevelFinal.Period())

	assert.Equal(t, "10-turn", SummaryLevel10.Title())
	assert.Equal(t, "Final", SummaryLevelFinal.Title())
}

func TestParseSummaryLevel(t *testing.T) {
	for in, want := range map[string]SummaryLevel{
		"10": SummaryLevel10, "100-turn": SummaryLevel100, " 1000 ": SummaryLevel1000, "FINAL": SummaryLevelFinal,
	} {
		got, err := ParseSummaryLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSummaryLevel("weekly")
	assert.Error(t, err)
}

func TestSummary_Header(t *testing.T) {
	s := Summary{Level: SummaryLevelFinal, Turn: 300}
	assert.Equal(t, "--- Final Summary at Turn 300 ---", s.Header())
	s = Summary{Level: SummaryLevel10, Turn: 20}
	assert.Equal(t, "--- 10-turn Summary at Turn 20 ---", s.Header())
}
