package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketlens/insight-engine/internal/config"
	"github.com/marketlens/insight-engine/internal/dataset"
	"github.com/marketlens/insight-engine/internal/models"
	"github.com/marketlens/insight-engine/internal/storage"
)

// ErrInsufficientHistory signals that a series is too short to train the
// sequence model. Forecasting then uses the fallback estimator; the error
// never aborts a pipeline run.
var ErrInsufficientHistory = errors.New("insufficient history for sequence model")

// Artifact is the persisted training output: the model weights together
// with the normalization state fitted on the training series. The two are
// inseparable; inverting a forecast with any other state is invalid.
type Artifact struct {
	ModelName     string                     `json:"model_name"`
	TrainedAt     time.Time                  `json:"trained_at"`
	Model         *Model                     `json:"model"`
	Normalization dataset.NormalizationState `json:"normalization"`
}

// Engine trains per-metric sequence models and produces forecast
// continuations, degrading to constant-slope extrapolation whenever a model
// cannot be trained or loaded.
type Engine struct {
	cfg    config.ForecastConfig
	store  *storage.ArtifactStore
	logger *logrus.Logger
	// norms caches the fitted normalization per metric for this process
	// only; other processes must reload from the artifact store.
	norms map[string]dataset.NormalizationState
}

func NewEngine(cfg config.ForecastConfig, store *storage.ArtifactStore, logger *logrus.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		store:  store,
		logger: logger,
		norms:  make(map[string]dataset.NormalizationState),
	}
}

// Normalization returns the normalization state fitted by the most recent
// Train call for a metric in this process. Other processes must reload it
// from the persisted artifact instead; the cache is not shareable.
func (e *Engine) Normalization(metricKey string) (dataset.NormalizationState, bool) {
	norm, ok := e.norms[metricKey]
	return norm, ok
}

// Train fits a sequence model on the series and persists the artifact under
// modelName, overwriting any previous one. A series of length <= seq_length
// returns ErrInsufficientHistory without touching the stored artifact.
func (e *Engine) Train(series *models.Series, modelName string) error {
	values := series.Values()
	if len(values) <= e.cfg.SeqLength {
		return fmt.Errorf("%w: %s has %d points, need more than %d",
			ErrInsufficientHistory, series.MetricKey, len(values), e.cfg.SeqLength)
	}

	norm := dataset.FitNormalization(values)
	windows := dataset.BuildWindows(norm.Transform(values), e.cfg.SeqLength)
	train, val := windows.Split(e.cfg.TrainSplit)
	if train.Empty() {
		train = windows
		val = dataset.Windows{}
	}

	model := NewModel(ModelConfig{
		SeqLength:    e.cfg.SeqLength,
		HiddenSize:   e.cfg.HiddenSize,
		Epochs:       e.cfg.Epochs,
		BatchSize:    e.cfg.BatchSize,
		LearningRate: e.cfg.LearningRate,
		Seed:         e.cfg.Seed,
	})
	if err := model.Fit(train); err != nil {
		return fmt.Errorf("training %s: %w", modelName, err)
	}

	artifact := Artifact{
		ModelName:     modelName,
		TrainedAt:     time.Now().UTC(),
		Model:         model,
		Normalization: norm,
	}
	if err := e.store.SaveModel(modelName, artifact); err != nil {
		return err
	}
	e.norms[series.MetricKey] = norm

	e.logger.WithFields(logrus.Fields{
		"model":           modelName,
		"points":          len(values),
		"train_windows":   train.Len(),
		"validation_loss": model.Loss(val),
	}).Info("Sequence model trained")
	return nil
}

// Forecast produces a horizon-step continuation of the series. The model
// path is used when history suffices and an artifact can be obtained under
// the configured retrain policy; every failure mode degrades to the
// fallback estimator with a logged warning, never an error. The returned
// series is contiguous from the step after the last observed date.
func (e *Engine) Forecast(series *models.Series, modelName string, horizon int) []models.ForecastPoint {
	values := series.Values()
	lastDate, ok := series.LastDate()
	if !ok || horizon < 1 {
		return nil
	}

	artifact, err := e.obtainArtifact(series, modelName)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"model":  modelName,
			"metric": series.MetricKey,
		}).Warnf("Falling back to trend extrapolation: %v", err)
		return e.attachDates(Fallback(values, horizon), lastDate)
	}

	forecast, err := e.rollout(artifact, values, horizon)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"model":  modelName,
			"metric": series.MetricKey,
		}).Warnf("Model rollout failed, falling back to trend extrapolation: %v", err)
		return e.attachDates(Fallback(values, horizon), lastDate)
	}

	return e.attachDates(forecast, lastDate)
}

// obtainArtifact resolves a usable trained artifact for the series under
// the retrain policy: "always" retrains every call, "if_missing" retrains
// only when no stored artifact exists, "never" only loads.
func (e *Engine) obtainArtifact(series *models.Series, modelName string) (*Artifact, error) {
	retrain := false
	switch e.cfg.RetrainPolicy {
	case config.RetrainAlways:
		retrain = true
	case config.RetrainIfMissing:
		retrain = !e.store.HasModel(modelName)
	}

	if retrain {
		if err := e.Train(series, modelName); err != nil {
			return nil, err
		}
	}

	var artifact Artifact
	if err := e.store.LoadModel(modelName, &artifact); err != nil {
		return nil, err
	}
	if artifact.Model == nil {
		return nil, fmt.Errorf("%w: %s: empty artifact", storage.ErrModelUnavailable, modelName)
	}
	return &artifact, nil
}

// rollout forecasts autoregressively: predict one normalized step, roll the
// window forward and repeat. Predictions stay in normalized space and are
// inverse-transformed as one batch at the end.
func (e *Engine) rollout(artifact *Artifact, values []float64, horizon int) ([]float64, error) {
	seqLength := artifact.Model.Config.SeqLength
	if len(values) < seqLength {
		return nil, fmt.Errorf("%w: window needs %d points, series has %d",
			ErrInsufficientHistory, seqLength, len(values))
	}

	normalized := artifact.Normalization.Transform(values)
	window := make([]float64, seqLength)
	copy(window, normalized[len(normalized)-seqLength:])

	predictions := make([]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		pred := artifact.Model.Predict(window)
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			return nil, fmt.Errorf("model produced non-finite prediction at step %d", step+1)
		}
		predictions = append(predictions, pred)
		window = rollWindow(window, pred)
	}

	return artifact.Normalization.Inverse(predictions), nil
}

// rollWindow returns a new window with the oldest value dropped and the
// prediction appended; the input window is never mutated.
func rollWindow(window []float64, next float64) []float64 {
	out := make([]float64, len(window))
	copy(out, window[1:])
	out[len(out)-1] = next
	return out
}

// Fallback is the constant-slope estimator: the next value is the last
// observation plus the last observed delta, and longer horizons reuse that
// same delta per step instead of recomputing it from their own output. A
// series with fewer than two points projects flat.
func Fallback(values []float64, horizon int) []float64 {
	if len(values) == 0 || horizon < 1 {
		return nil
	}
	last := values[len(values)-1]
	delta := 0.0
	if len(values) >= 2 {
		delta = last - values[len(values)-2]
	}

	out := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		out[i] = last + delta*float64(i+1)
	}
	return out
}

// attachDates pairs forecast values with contiguous calendar steps starting
// immediately after the last observed date, using the configured step unit.
func (e *Engine) attachDates(values []float64, lastDate time.Time) []models.ForecastPoint {
	points := make([]models.ForecastPoint, len(values))
	for i, v := range values {
		var date time.Time
		if e.cfg.StepUnit == config.StepMonthly {
			date = lastDate.AddDate(0, i+1, 0)
		} else {
			date = lastDate.AddDate(0, 0, i+1)
		}
		points[i] = models.ForecastPoint{Date: date, Value: v}
	}
	return points
}
