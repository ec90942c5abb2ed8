package telemetry

import (
	"context"
	"fmt"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TurnInstruments 把回合事件记录为 OTel 指标，实现 conversation.Observer
type TurnInstruments struct {
	turns     metric.Int64Counter
	duration  metric.Float64Histogram
	handoffs  metric.Int64Counter
	summaries metric.Int64Counter
	leaning   metric.Float64Gauge
}

var _ conversation.Observer = (*TurnInstruments)(nil)

// NewTurnInstruments 在 meter 上创建回合指标
func NewTurnInstruments(meter metric.Meter) (*TurnInstruments, error) {
	var (
		ti  TurnInstruments
		err error
	)
	if ti.turns, err = meter.Int64Counter("policyswarm.turns",
		metric.WithDescription("Completed conversation turns")); err != nil {
		return nil, fmt.Errorf("create turns counter: %w", err)
	}
	if ti.duration, err = meter.Float64Histogram("policyswarm.turn.duration",
		metric.WithDescription("Conversation turn duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create turn duration histogram: %w", err)
	}
	if ti.handoffs, err = meter.Int64Counter("policyswarm.handoffs",
		metric.WithDescription("Intra-turn hand-offs by status")); err != nil {
		return nil, fmt.Errorf("create handoffs counter: %w", err)
	}
	if ti.summaries, err = meter.Int64Counter("policyswarm.summaries",
		metric.WithDescription("Summaries produced by level")); err != nil {
		return nil, fmt.Errorf("create summaries counter: %w", err)
	}
	if ti.leaning, err = meter.Float64Gauge("policyswarm.political_leaning",
		metric.WithDescription("Political leaning after the turn evaluation")); err != nil {
		return nil, fmt.Errorf("create leaning gauge: %w", err)
	}
	return &ti, nil
}

// OnTurn implements conversation.Observer
func (ti *TurnInstruments) OnTurn(ev conversation.TurnEvent) {
	ctx := context.Background()
	run := attribute.String("run.id", ev.RunID)

	ti.turns.Add(ctx, 1, metric.WithAttributes(run, attribute.String("evaluation", string(ev.Evaluation))))
	ti.duration.Record(ctx, ev.Duration.Seconds(), metric.WithAttributes(run))
	for _, h := range ev.Handoffs {
		ti.handoffs.Add(ctx, 1, metric.WithAttributes(run, attribute.String("status", string(h.Status))))
	}
	for _, s := range ev.Summaries {
		ti.summaries.Add(ctx, 1, metric.WithAttributes(run, attribute.String("level", string(s.Level))))
	}
	ti.leaning.Record(ctx, ev.Snapshot.Leaning, metric.WithAttributes(run))
}
