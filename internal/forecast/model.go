package forecast

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/marketlens/insight-engine/internal/dataset"
)

// ModelConfig fixes the training budget and topology of the sequence
// regressor. The seed makes training deterministic: two models built from
// the same config and data are identical.
type ModelConfig struct {
	SeqLength    int     `json:"seq_length"`
	HiddenSize   int     `json:"hidden_size"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`
}

// Model is a compact recurrent regressor mapping a window of seqLength
// normalized scalars to the next scalar. One tanh recurrent layer feeds a
// linear readout; training is stochastic gradient descent with
// backpropagation through time over the full window.
type Model struct {
	Config ModelConfig `json:"config"`
	Wx     []float64   `json:"wx"` // input weights, one per hidden unit
	Wh     [][]float64 `json:"wh"` // recurrent weights, hidden x hidden
	Bh     []float64   `json:"bh"` // hidden bias
	Wo     []float64   `json:"wo"` // readout weights
	Bo     float64     `json:"bo"` // readout bias
}

// gradClip bounds each gradient component; recurrent nets on short windows
// rarely explode, but a runaway update would poison every later forecast.
const gradClip = 1.0

func NewModel(cfg ModelConfig) *Model {
	rng := rand.New(rand.NewSource(cfg.Seed))
	scale := 1.0 / math.Sqrt(float64(cfg.HiddenSize))

	m := &Model{
		Config: cfg,
		Wx:     make([]float64, cfg.HiddenSize),
		Wh:     make([][]float64, cfg.HiddenSize),
		Bh:     make([]float64, cfg.HiddenSize),
		Wo:     make([]float64, cfg.HiddenSize),
	}
	for i := 0; i < cfg.HiddenSize; i++ {
		m.Wx[i] = (rng.Float64()*2 - 1) * scale
		m.Wo[i] = (rng.Float64()*2 - 1) * scale
		m.Wh[i] = make([]float64, cfg.HiddenSize)
		for j := 0; j < cfg.HiddenSize; j++ {
			m.Wh[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return m
}

// Fit trains the model on windowed pairs for the configured epoch budget.
// Pairs are visited in temporal order; no shuffling, so training is fully
// reproducible.
func (m *Model) Fit(w dataset.Windows) error {
	if w.Empty() {
		return fmt.Errorf("no training windows: series shorter than seq_length+1")
	}

	batchSize := m.Config.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for epoch := 0; epoch < m.Config.Epochs; epoch++ {
		for start := 0; start < w.Len(); start += batchSize {
			end := start + batchSize
			if end > w.Len() {
				end = w.Len()
			}
			m.trainBatch(w.X[start:end], w.Y[start:end])
		}
	}

	return nil
}

// Predict runs one forward pass over a window and returns the next-step
// estimate in normalized space.
func (m *Model) Predict(window []float64) float64 {
	h := make([]float64, m.Config.HiddenSize)
	for _, x := range window {
		h = m.step(x, h)
	}
	y := m.Bo
	for i, hv := range h {
		y += m.Wo[i] * hv
	}
	return y
}

// Loss returns the mean squared error over a window set, used for
// validation reporting after training.
func (m *Model) Loss(w dataset.Windows) float64 {
	if w.Empty() {
		return 0
	}
	var sum float64
	for i := range w.X {
		diff := m.Predict(w.X[i]) - w.Y[i]
		sum += diff * diff
	}
	return sum / float64(w.Len())
}

func (m *Model) step(x float64, h []float64) []float64 {
	next := make([]float64, m.Config.HiddenSize)
	for i := 0; i < m.Config.HiddenSize; i++ {
		pre := m.Wx[i]*x + m.Bh[i]
		for j := 0; j < m.Config.HiddenSize; j++ {
			pre += m.Wh[i][j] * h[j]
		}
		next[i] = math.Tanh(pre)
	}
	return next
}

type gradients struct {
	wx []float64
	wh [][]float64
	bh []float64
	wo []float64
	bo float64
}

func newGradients(hidden int) *gradients {
	g := &gradients{
		wx: make([]float64, hidden),
		wh: make([][]float64, hidden),
		bh: make([]float64, hidden),
		wo: make([]float64, hidden),
	}
	for i := range g.wh {
		g.wh[i] = make([]float64, hidden)
	}
	return g
}

// trainBatch accumulates BPTT gradients over the batch and applies a single
// averaged update.
func (m *Model) trainBatch(batchX [][]float64, batchY []float64) {
	hidden := m.Config.HiddenSize
	g := newGradients(hidden)

	for s := range batchX {
		m.backprop(batchX[s], batchY[s], g)
	}

	lr := m.Config.LearningRate / float64(len(batchX))
	for i := 0; i < hidden; i++ {
		m.Wx[i] -= lr * clip(g.wx[i])
		m.Bh[i] -= lr * clip(g.bh[i])
		m.Wo[i] -= lr * clip(g.wo[i])
		for j := 0; j < hidden; j++ {
			m.Wh[i][j] -= lr * clip(g.wh[i][j])
		}
	}
	m.Bo -= lr * clip(g.bo)
}

// backprop adds the gradient of the squared error for one (window, target)
// pair into g, unrolling the recurrence over the full window.
func (m *Model) backprop(window []float64, target float64, g *gradients) {
	hidden := m.Config.HiddenSize
	steps := len(window)

	// Forward pass, keeping every hidden state. states[0] is the zero
	// initial state, states[t+1] the state after consuming window[t].
	states := make([][]float64, steps+1)
	states[0] = make([]float64, hidden)
	for t, x := range window {
		states[t+1] = m.step(x, states[t])
	}

	last := states[steps]
	y := m.Bo
	for i, hv := range last {
		y += m.Wo[i] * hv
	}
	dy := 2 * (y - target)

	dh := make([]float64, hidden)
	for i := 0; i < hidden; i++ {
		g.wo[i] += dy * last[i]
		dh[i] = dy * m.Wo[i]
	}
	g.bo += dy

	for t := steps; t >= 1; t-- {
		h := states[t]
		prev := states[t-1]
		x := window[t-1]

		da := make([]float64, hidden)
		for i := 0; i < hidden; i++ {
			da[i] = dh[i] * (1 - h[i]*h[i])
			g.wx[i] += da[i] * x
			g.bh[i] += da[i]
			for j := 0; j < hidden; j++ {
				g.wh[i][j] += da[i] * prev[j]
			}
		}

		dhPrev := make([]float64, hidden)
		for j := 0; j < hidden; j++ {
			for i := 0; i < hidden; i++ {
				dhPrev[j] += m.Wh[i][j] * da[i]
			}
		}
		dh = dhPrev
	}
}

func clip(v float64) float64 {
	if v > gradClip {
		return gradClip
	}
	if v < -gradClip {
		return -gradClip
	}
	return v
}
