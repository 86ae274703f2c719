package forecast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/insight-engine/internal/dataset"
)

func testModelConfig() ModelConfig {
	return ModelConfig{
		SeqLength:    3,
		HiddenSize:   8,
		Epochs:       20,
		BatchSize:    4,
		LearningRate: 0.01,
		Seed:         42,
	}
}

func rampWindows(t *testing.T) dataset.Windows {
	t.Helper()
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i) / 19
	}
	w := dataset.BuildWindows(values, 3)
	require.False(t, w.Empty())
	return w
}

func TestModelDeterministicGivenSeed(t *testing.T) {
	w := rampWindows(t)

	a := NewModel(testModelConfig())
	require.NoError(t, a.Fit(w))
	b := NewModel(testModelConfig())
	require.NoError(t, b.Fit(w))

	window := []float64{0.2, 0.3, 0.4}
	assert.Equal(t, a.Predict(window), b.Predict(window))
	assert.Equal(t, a.Wx, b.Wx)
	assert.Equal(t, a.Wo, b.Wo)
}

func TestModelSeedChangesWeights(t *testing.T) {
	cfg := testModelConfig()
	a := NewModel(cfg)
	cfg.Seed = 7
	b := NewModel(cfg)
	assert.NotEqual(t, a.Wx, b.Wx)
}

func TestModelFitReducesLoss(t *testing.T) {
	w := rampWindows(t)

	m := NewModel(testModelConfig())
	before := m.Loss(w)
	require.NoError(t, m.Fit(w))
	after := m.Loss(w)

	assert.Less(t, after, before)
}

func TestModelFitEmptyWindows(t *testing.T) {
	m := NewModel(testModelConfig())
	assert.Error(t, m.Fit(dataset.Windows{}))
}

func TestModelPredictFinite(t *testing.T) {
	w := rampWindows(t)
	m := NewModel(testModelConfig())
	require.NoError(t, m.Fit(w))

	pred := m.Predict([]float64{0.5, 0.6, 0.7})
	assert.False(t, math.IsNaN(pred))
	assert.False(t, math.IsInf(pred, 0))
}

func TestModelSerializationRoundTrip(t *testing.T) {
	w := rampWindows(t)
	m := NewModel(testModelConfig())
	require.NoError(t, m.Fit(w))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var restored Model
	require.NoError(t, json.Unmarshal(data, &restored))

	window := []float64{0.1, 0.2, 0.3}
	assert.Equal(t, m.Predict(window), restored.Predict(window))
}
