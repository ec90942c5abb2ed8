package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveChart 把倾向历史画成折线图，横轴是从 1 开始的回合号
func SaveChart(path string, history []float64) error {
	if len(history) == 0 {
		return fmt.Errorf("empty leaning history")
	}

	p := plot.New()
	p.Title.Text = "Political Leaning Over Time"
	p.X.Label.Text = "Turn"
	p.Y.Label.Text = "Political Leaning"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	p.Add(line, points)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
