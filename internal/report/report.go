package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/BaSui01/policyswarm/config"
)

// Results 是一次运行的最终结果记录
type Results struct {
	RunID          string             `json:"run_id"`
	TotalTurns     int                `json:"total_turns"`
	TurnsCompleted int                `json:"turns_completed"`
	Temperature    float64            `json:"temperature"`
	Termination    string             `json:"termination"`
	Error          string             `json:"error,omitempty"`
	Framework      framework.Snapshot `json:"framework"`
	LeaningHistory []float64          `json:"leaning_history"`
	MeanLeaning    float64            `json:"mean_leaning"`
	StdDevLeaning  float64            `json:"stddev_leaning"`
	FinalSummary   string             `json:"final_summary"`
}

// LeaningStats 返回倾向历史的均值与样本标准差。
// 空历史返回 (0, 0)，只有一个值时标准差为 0。
func LeaningStats(history []float64) (mean, stddev float64) {
	if len(history) == 0 {
		return 0, 0
	}
	if len(history) == 1 {
		return history[0], 0
	}
	return stat.MeanStdDev(history, nil)
}

// NewResults 从运行结果构造结果记录，res 为 nil 时得到空记录
func NewResults(res *conversation.RunResult, temperature float64) Results {
	r := Results{Temperature: temperature, LeaningHistory: []float64{}}
	if res == nil {
		return r
	}

	r.RunID = res.RunID
	r.TotalTurns = res.TotalTurns
	r.TurnsCompleted = res.TurnsCompleted
	r.Termination = string(res.Termination)
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	r.Framework = res.Final
	if res.LeaningHistory != nil {
		r.LeaningHistory = append(r.LeaningHistory, res.LeaningHistory...)
	}
	r.MeanLeaning, r.StdDevLeaning = LeaningStats(r.LeaningHistory)
	r.FinalSummary = res.FinalSummary.Text
	return r
}

// ResultsFileName 返回 results_<turns>_<temperature>.txt
func ResultsFileName(turns int, temperature float64) string {
	return fmt.Sprintf("results_%d_%s.txt", turns, formatTemperature(temperature))
}

// ChartFileName 返回 political_leaning_over_time_<turns>_<temperature>.png
func ChartFileName(turns int, temperature float64) string {
	return fmt.Sprintf("political_leaning_over_time_%d_%s.png", turns, formatTemperature(temperature))
}

// 保留一位小数点，1 写作 1.0
func formatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Format 渲染结果文件的文本内容
func Format(r Results) string {
	m := r.Framework.Metrics

	var b strings.Builder
	fmt.Fprintf(&b, "Final Political Framework:\n%s\n\n", r.Framework.Proposals)
	fmt.Fprintf(&b, "Final Decisions:\n%s\n\n", r.Framework.Decisions)
	fmt.Fprintf(&b, "Final Metrics: economy=%g fairness=%g equality=%g technological_progress=%g\n",
		m.Economy, m.Fairness, m.Equality, m.TechnologicalProgress)
	fmt.Fprintf(&b, "Final Political Leaning: %g\n", r.Framework.Leaning)
	fmt.Fprintf(&b, "Average Political Leaning: %g\n", r.MeanLeaning)
	fmt.Fprintf(&b, "Standard Deviation of Political Leaning: %g\n", r.StdDevLeaning)
	fmt.Fprintf(&b, "Final Summary:\n%s\n", r.FinalSummary)
	return b.String()
}

// Artifacts 记录写出的文件
type Artifacts struct {
	ResultsPath string
	ChartPath   string
}

// Reporter 写出结果文件、倾向曲线并打印终端汇总
type Reporter struct {
	config config.ReportConfig
	out    io.Writer
	logger *zap.Logger
}

// Option 配置 Reporter
type Option func(*Reporter)

// WithOutput 设置终端汇总的输出位置，默认 os.Stdout
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) { r.out = w }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reporter) { r.logger = logger }
}

// New 创建 Reporter
func New(cfg config.ReportConfig, opts ...Option) *Reporter {
	r := &Reporter{config: cfg, out: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.config.OutputDir == "" {
		r.config.OutputDir = "."
	}
	r.logger = r.logger.With(zap.String("component", "reporter"))
	return r
}

// Write 并发写出结果文件与曲线图。
// 倾向历史为空时不画图，结果文件总是写出。
func (r *Reporter) Write(ctx context.Context, res Results) (Artifacts, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output dir: %w", err)
	}

	art := Artifacts{
		ResultsPath: filepath.Join(r.config.OutputDir, ResultsFileName(res.TotalTurns, res.Temperature)),
	}
	drawChart := r.config.Chart && len(res.LeaningHistory) > 0
	if drawChart {
		art.ChartPath = filepath.Join(r.config.OutputDir, ChartFileName(res.TotalTurns, res.Temperature))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if err := os.WriteFile(art.ResultsPath, []byte(Format(res)), 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		return nil
	})
	if drawChart {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return SaveChart(art.ChartPath, res.LeaningHistory)
		})
	}
	if err := g.Wait(); err != nil {
		return art, err
	}

	r.logger.Info("results written",
		zap.String("results", art.ResultsPath),
		zap.String("chart", art.ChartPath),
		zap.Float64("mean_leaning", res.MeanLeaning),
		zap.Float64("stddev_leaning", res.StdDevLeaning),
	)

	if r.config.Terminal {
		fmt.Fprintln(r.out, Render(res, art))
	}
	return art, nil
}
