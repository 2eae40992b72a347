// internal/service/model.go
package service

import (
	"context"
	"encoding/json"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
)

// ScoringModel maps a feature vector to a compatibility probability.
// Contract: deterministic for the same input and model version, output in
// [0,1], and 0 (never a panic or error) on internal inference failure,
// since scoring must not abort a matching round.
type ScoringModel interface {
	Predict(ctx context.Context, features models.FeatureVector) float64
	Version() string
}

// LogisticModel is a linear model behind a sigmoid. It doubles as the
// structurally-equivalent fallback when no trained artifact is available:
// same input shape, same output range, degraded score quality.
type LogisticModel struct {
	weights [models.FeatureVectorSize]float64
	bias    float64
	version string
	logger  *zap.Logger
}

// NewLogisticModel creates the untrained fallback model.
func NewLogisticModel(logger *zap.Logger) *LogisticModel {
	return &LogisticModel{
		weights: [models.FeatureVectorSize]float64{
			1.2,  // blood type compatibility
			0.8,  // rh factor compatibility
			1.5,  // reputation
			1.0,  // availability
			1.3,  // success rate
			0.7,  // response time
			0.5,  // donation recency
			0.4,  // urgency
			1.4,  // fraud risk inverse
			0.9,  // biometric verification
		},
		bias:    -4.5,
		version: "fallback-v1",
		logger:  logger,
	}
}

// Predict computes sigmoid(w·x + b), clamped to [0,1].
func (m *LogisticModel) Predict(ctx context.Context, features models.FeatureVector) float64 {
	score := m.bias
	for i, x := range features.Array() {
		score += m.weights[i] * x
	}

	p := sigmoid(score)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		m.logger.Error("model inference produced non-finite score",
			zap.String("version", m.version))
		return 0
	}
	return clamp01(p)
}

func (m *LogisticModel) Version() string {
	return m.version
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}

type modelArtifact struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Version string    `json:"version"`
}

// LoadModel reads a trained weights artifact from disk. Missing or invalid
// artifacts degrade to the untrained fallback rather than failing startup.
func LoadModel(path string, logger *zap.Logger) *LogisticModel {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("model artifact not found, using fallback model",
			zap.String("path", path), zap.Error(err))
		return NewLogisticModel(logger)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		logger.Warn("invalid model artifact, using fallback model",
			zap.String("path", path), zap.Error(err))
		return NewLogisticModel(logger)
	}
	if len(artifact.Weights) != models.FeatureVectorSize {
		logger.Warn("model artifact has wrong input shape, using fallback model",
			zap.String("path", path),
			zap.Int("weights", len(artifact.Weights)))
		return NewLogisticModel(logger)
	}

	m := &LogisticModel{bias: artifact.Bias, version: artifact.Version, logger: logger}
	copy(m.weights[:], artifact.Weights)

	logger.Info("model loaded", zap.String("version", m.version))
	return m
}
