package training

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"alsclassifier/internal/evaluation"
)

const topImportances = 10

// RenderDiagnostics writes a PNG with the holdout confusion matrix and
// the top feature importances side by side.
func RenderDiagnostics(path string, metrics *evaluation.ClassificationMetrics, importances []FeatureImportance) error {
	confusion, err := confusionPlot(metrics)
	if err != nil {
		return err
	}

	importance, err := importancePlot(importances)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	img := vgimg.New(vg.Points(900), vg.Points(400))
	dc := draw.New(img)

	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Points(10)}
	canvases := plot.Align([][]*plot.Plot{{confusion, importance}}, tiles, dc)
	confusion.Draw(canvases[0][0])
	importance.Draw(canvases[0][1])

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func confusionPlot(metrics *evaluation.ClassificationMetrics) (*plot.Plot, error) {
	if len(metrics.ConfusionMatrix) != 2 {
		return nil, fmt.Errorf("confusion plot expects a binary matrix, got %d classes", len(metrics.ConfusionMatrix))
	}

	m := metrics.ConfusionMatrix
	values := plotter.Values{
		float64(m[0][0]),
		float64(m[0][1]),
		float64(m[1][0]),
		float64(m[1][1]),
	}

	p := plot.New()
	p.Title.Text = "Confusion Matrix (holdout)"
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("failed to build confusion chart: %w", err)
	}
	p.Add(bars)
	p.NominalX("True Neg", "False Pos", "False Neg", "True Pos")

	return p, nil
}

func importancePlot(importances []FeatureImportance) (*plot.Plot, error) {
	ranked := make([]FeatureImportance, len(importances))
	copy(ranked, importances)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})

	if len(ranked) > topImportances {
		ranked = ranked[:topImportances]
	}

	values := make(plotter.Values, len(ranked))
	labels := make([]string, len(ranked))
	for i, imp := range ranked {
		values[i] = imp.Weight
		labels[i] = imp.Column
	}

	p := plot.New()
	p.Title.Text = "Top Feature Importances"
	p.Y.Label.Text = "Importance"
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("failed to build importance chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	return p, nil
}
