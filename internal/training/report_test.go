package training

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsclassifier/internal/evaluation"
)

func sampleMetrics() *evaluation.ClassificationMetrics {
	return &evaluation.ClassificationMetrics{
		Accuracy:        0.9,
		ROCAUC:          0.95,
		ConfusionMatrix: [][]int{{8, 1}, {1, 10}},
	}
}

func sampleImportances() []FeatureImportance {
	return []FeatureImportance{
		{Column: "ALSFRS_R_Score", Weight: 0.4},
		{Column: "FVC_Percent", Weight: 0.3},
		{Column: "Age", Weight: 0.2},
		{Column: "BMI", Weight: 0.1},
	}
}

func TestRenderDiagnosticsWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "diagnostics.png")

	err := RenderDiagnostics(path, sampleMetrics(), sampleImportances())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderDiagnosticsRequiresBinaryMatrix(t *testing.T) {
	metrics := sampleMetrics()
	metrics.ConfusionMatrix = [][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	err := RenderDiagnostics(filepath.Join(t.TempDir(), "out.png"), metrics, sampleImportances())
	assert.Error(t, err)
}
