package dataset

// NormalizationState is the min-max scale fitted on one series. It is a
// plain value object: fitting is pure, and the same state that scaled the
// training data must be reused to invert forecasts back to original units.
// A forecast inverted with a different state is meaningless.
type NormalizationState struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FitNormalization computes the min-max scale of a series. A constant
// series (max == min) is legal; Transform then maps every value to 0 and
// Inverse maps back to the constant.
func FitNormalization(values []float64) NormalizationState {
	if len(values) == 0 {
		return NormalizationState{}
	}
	state := NormalizationState{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < state.Min {
			state.Min = v
		}
		if v > state.Max {
			state.Max = v
		}
	}
	return state
}

// Transform scales values into [0, 1] under the fitted state.
func (n NormalizationState) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	span := n.Max - n.Min
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - n.Min) / span
	}
	return out
}

// Inverse maps normalized values back to original units.
func (n NormalizationState) Inverse(values []float64) []float64 {
	out := make([]float64, len(values))
	span := n.Max - n.Min
	for i, v := range values {
		out[i] = v*span + n.Min
	}
	return out
}

// Windows holds supervised training pairs: X[i] is seqLength consecutive
// normalized values and Y[i] the immediately following one.
type Windows struct {
	X [][]float64
	Y []float64
}

// Len returns the number of training pairs.
func (w Windows) Len() int {
	return len(w.X)
}

// Empty reports whether the series was too short to window.
func (w Windows) Empty() bool {
	return len(w.X) == 0
}

// BuildWindows slices a normalized series into training pairs. A series of
// length <= seqLength yields an empty result; that is an insufficient-data
// signal for the caller, not an error.
func BuildWindows(values []float64, seqLength int) Windows {
	if seqLength < 1 || len(values) <= seqLength {
		return Windows{}
	}

	n := len(values) - seqLength
	w := Windows{
		X: make([][]float64, 0, n),
		Y: make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		window := make([]float64, seqLength)
		copy(window, values[i:i+seqLength])
		w.X = append(w.X, window)
		w.Y = append(w.Y, values[i+seqLength])
	}
	return w
}

// Split divides the pairs into train and validation sets by temporal order.
// No shuffling: the validation set is always the most recent tail.
func (w Windows) Split(trainRatio float64) (Windows, Windows) {
	cut := int(float64(w.Len()) * trainRatio)
	if cut < 0 {
		cut = 0
	}
	if cut > w.Len() {
		cut = w.Len()
	}
	train := Windows{X: w.X[:cut], Y: w.Y[:cut]}
	val := Windows{X: w.X[cut:], Y: w.Y[cut:]}
	return train, val
}
