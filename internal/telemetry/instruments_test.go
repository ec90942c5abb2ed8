package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"github.com/BaSui01/policyswarm/agent/evaluation"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/BaSui01/policyswarm/agent/handoff"
	"github.com/BaSui01/policyswarm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestTurnInstruments_OnTurn(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	ti, err := NewTurnInstruments(mp.Meter("test"))
	require.NoError(t, err)

	for turn := 1; turn <= 3; turn++ {
		ti.OnTurn(conversation.TurnEvent{
			RunID:      "run-1",
			Turn:       turn,
			Evaluation: evaluation.StatusSkipped,
			Handoffs:   []handoff.Handoff{{Status: handoff.StatusCompleted}},
			Snapshot:   framework.Snapshot{Leaning: 0.3},
			Duration:   time.Second,
		})
	}
	ti.OnTurn(conversation.TurnEvent{
		RunID:      "run-1",
		Turn:       10,
		Evaluation: evaluation.StatusEvaluated,
		Summaries:  []types.Summary{{Level: types.SummaryLevel10, Text: "s"}},
		Snapshot:   framework.Snapshot{Leaning: -0.5},
	})

	metrics := collect(t, reader)

	turns, ok := metrics["policyswarm.turns"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range turns.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(4), total)

	handoffs, ok := metrics["policyswarm.handoffs"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, handoffs.DataPoints, 1)
	assert.Equal(t, int64(3), handoffs.DataPoints[0].Value)

	summaries, ok := metrics["policyswarm.summaries"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, summaries.DataPoints, 1)
	assert.Equal(t, int64(1), summaries.DataPoints[0].Value)

	leaning, ok := metrics["policyswarm.political_leaning"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, leaning.DataPoints, 1)
	assert.Equal(t, -0.5, leaning.DataPoints[0].Value)

	_, ok = metrics["policyswarm.turn.duration"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}
