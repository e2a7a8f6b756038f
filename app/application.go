// Package app ties the dataset and the model together behind the prediction
// form.
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"goldpredict/apperr"
	"goldpredict/config"
	"goldpredict/market"
	"goldpredict/ml"
	"goldpredict/monitoring"
)

// State 应用状态
type State string

const (
	StateReady  State = "ready"
	StateHalted State = "halted"
)

const (
	msgInvalidInput = "All prices must be positive values."
	displayFormat   = "The predicted closing price is: %s"
)

// DataLoader loads the historical table. market.LoadDataset by default.
type DataLoader func(opts market.LoadOptions) (*market.Dataset, error)

// ModelLoader loads the model. ml.LoadModel by default.
type ModelLoader func(modelType, path string) (ml.Predictor, error)

// PriceInput is what the user types into the form.
type PriceInput struct {
	Open float64 `json:"open"`
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

func (p PriceInput) Record() ml.FeatureRecord {
	return ml.FeatureRecord{Open: p.Open, High: p.High, Low: p.Low}
}

// Prediction 预测结果
type Prediction struct {
	Input   PriceInput `json:"input"`
	Value   float64    `json:"value"`
	Display string     `json:"display"`
}

// Application owns the loaded dataset and model. Both are read-only after
// Initialize, so one Application serves any number of requests.
type Application struct {
	title       string
	dataset     *market.Dataset
	predictor   ml.Predictor
	preview     market.Table
	previewRows int
	logger      *zap.Logger
	metrics     *monitoring.Metrics
}

// Init is the startup result: either App is set, or Err explains why the
// application halted.
type Init struct {
	App   *Application
	Err   error
	Title string
}

func (i Init) OK() bool {
	return i.Err == nil && i.App != nil
}

func (i Init) Halted() bool {
	return !i.OK()
}

func (i Init) State() State {
	if i.Halted() {
		return StateHalted
	}
	return StateReady
}

type options struct {
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	loadData  DataLoader
	loadModel ModelLoader
}

// Option customises Initialize.
type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

func WithDataLoader(loader DataLoader) Option {
	return func(o *options) { o.loadData = loader }
}

func WithModelLoader(loader ModelLoader) Option {
	return func(o *options) { o.loadModel = loader }
}

// Initialize loads the dataset, then the model. The first failure halts
// startup and is returned in Init.Err unchanged.
func Initialize(cfg *config.Config, opts ...Option) Init {
	o := options{
		logger:   zap.NewNop(),
		loadData: market.LoadDataset,
		loadModel: func(modelType, path string) (ml.Predictor, error) {
			return ml.LoadModel(modelType, path)
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	logger := o.logger.Named("app")
	res := Init{Title: cfg.Title}

	halt := func(err error) Init {
		logger.Error("startup halted", zap.String("kind", string(apperr.KindOf(err))), zap.Error(err))
		o.metrics.SetReady(false)
		res.Err = err
		return res
	}

	delimiter, err := cfg.Dataset.DelimiterRune()
	if err != nil {
		return halt(err)
	}
	dataset, err := o.loadData(market.LoadOptions{
		Path:      cfg.Dataset.Path,
		Required:  cfg.Dataset.RequiredColumns,
		Format:    cfg.Dataset.Format,
		Delimiter: delimiter,
		Encoding:  cfg.Dataset.Encoding,
		Sheet:     cfg.Dataset.Sheet,
		Table:     cfg.Dataset.Table,
	})
	if err != nil {
		return halt(err)
	}
	logger.Info("dataset loaded",
		zap.String("path", dataset.Path()),
		zap.Int("rows", dataset.Len()),
		zap.Strings("columns", dataset.Columns()))

	predictor, err := o.loadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		return halt(err)
	}
	if m, ok := predictor.(*ml.Model); ok {
		logger.Info("model loaded",
			zap.String("path", cfg.Model.Path),
			zap.String("type", m.Type()),
			zap.Strings("features", m.Features()))
	}

	if cfg.Model.CacheSize > 0 {
		cached, err := ml.NewCachedPredictor(predictor, cfg.Model.CacheSize)
		if err != nil {
			return halt(err)
		}
		predictor = cached
	}

	res.App = &Application{
		title:       cfg.Title,
		dataset:     dataset,
		predictor:   predictor,
		preview:     dataset.Head(cfg.Dataset.PreviewRows),
		previewRows: cfg.Dataset.PreviewRows,
		logger:      logger,
		metrics:     o.metrics,
	}
	o.metrics.SetReady(true)
	return res
}

// Preview returns the table computed at startup.
func (a *Application) Preview() market.Table {
	return a.preview
}

// History returns the first n rows of the required columns.
func (a *Application) History(n int) market.Table {
	return a.dataset.Head(n)
}

// Predict validates input and runs inference. Invalid input never reaches
// the model.
func (a *Application) Predict(ctx context.Context, input PriceInput) (Prediction, error) {
	record := input.Record()
	if err := record.Validate(); err != nil {
		a.metrics.ObservePrediction(monitoring.OutcomeValidation)
		return Prediction{}, &apperr.Error{Kind: apperr.KindValidation, Op: "predict", Msg: msgInvalidInput, Err: err}
	}
	if err := ctx.Err(); err != nil {
		a.metrics.ObservePrediction(monitoring.OutcomeInference)
		return Prediction{}, apperr.Wrap(apperr.KindInference, "predict", "", err, "Prediction failed: %v", err)
	}

	start := time.Now()
	value, err := a.infer(record)
	a.metrics.ObserveInference(time.Since(start))
	if err != nil {
		a.metrics.ObservePrediction(monitoring.OutcomeInference)
		a.logger.Warn("inference failed", zap.Error(err))
		return Prediction{}, apperr.Wrap(apperr.KindInference, "predict", "", err, "Prediction failed: %v", err)
	}

	a.metrics.ObservePrediction(monitoring.OutcomeOK)
	return Prediction{
		Input:   input,
		Value:   value,
		Display: FormatPrice(value),
	}, nil
}

func (a *Application) infer(record ml.FeatureRecord) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return a.predictor.Infer(record)
}

// FormatPrice renders value with two decimals. Rounding works on the exact
// binary value, ties to even.
func FormatPrice(value float64) string {
	return fmt.Sprintf(displayFormat, strconv.FormatFloat(value, 'f', 2, 64))
}
