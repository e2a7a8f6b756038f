package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"goldpredict/apperr"
)

const opLoadModel = "load model"

// ArtifactFormat tags every model file this package reads and writes.
const ArtifactFormat = "goldpredict/model/v1"

const (
	TypeAuto   = "auto"
	TypeLinear = "linear"
	TypeSVR    = "svr"
	TypeTree   = "tree"
)

// Artifact is the on-disk envelope around a model's parameters.
type Artifact struct {
	Format   string          `json:"format"`
	Type     string          `json:"type"`
	Features []string        `json:"features,omitempty"`
	Scaler   *Scaler         `json:"scaler,omitempty"`
	Params   json.RawMessage `json:"params"`
}

// NewArtifact wraps params in an envelope of the given type.
func NewArtifact(modelType string, params interface{}) (Artifact, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Format:   ArtifactFormat,
		Type:     modelType,
		Features: FeatureNames(),
		Params:   payload,
	}, nil
}

func (a Artifact) Save(path string) error {
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadModel reads the artifact at path. modelType "" or "auto" accepts
// whatever type the artifact declares.
func LoadModel(modelType, path string) (*Model, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, apperr.Wrap(apperr.KindNotFound, opLoadModel, path, err, "Model file not found: %s", path)
	case err != nil:
		return nil, apperr.Wrap(apperr.KindNotFound, opLoadModel, path, err, "Cannot access model file: %s", path)
	case info.IsDir():
		return nil, apperr.Wrap(apperr.KindNotFound, opLoadModel, path, fs.ErrInvalid, "Model file not found: %s is a directory", path)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, deserializationError(path, err)
	}
	model, err := decodeModel(modelType, payload)
	if err != nil {
		return nil, deserializationError(path, err)
	}
	return model, nil
}

func deserializationError(path string, err error) error {
	return apperr.Wrap(apperr.KindDeserialization, opLoadModel, path, err, "Failed to load model: %v", err)
}

func decodeModel(modelType string, payload []byte) (*Model, error) {
	var artifact Artifact
	if err := strictUnmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	if artifact.Format != ArtifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %q", artifact.Format)
	}

	want := strings.ToLower(modelType)
	if want != "" && want != TypeAuto && want != artifact.Type {
		return nil, fmt.Errorf("artifact holds a %q model, %q was configured", artifact.Type, modelType)
	}
	if n := len(artifact.Features); n != 0 && n != featureCount {
		return nil, fmt.Errorf("model expects %d features, records have %d", n, featureCount)
	}
	if artifact.Scaler != nil {
		if err := artifact.Scaler.check(); err != nil {
			return nil, err
		}
	}
	if len(artifact.Params) == 0 {
		return nil, errors.New("artifact has no params")
	}

	var est estimator
	switch artifact.Type {
	case TypeLinear:
		est = &LinearParams{}
	case TypeSVR:
		est = &SVRParams{}
	case TypeTree:
		est = &TreeParams{}
	default:
		return nil, fmt.Errorf("unsupported model type %q", artifact.Type)
	}
	if err := strictUnmarshal(artifact.Params, est); err != nil {
		return nil, fmt.Errorf("invalid %s params: %w", artifact.Type, err)
	}
	if err := est.check(); err != nil {
		return nil, err
	}

	return &Model{
		kind:      artifact.Type,
		features:  artifact.Features,
		scaler:    artifact.Scaler,
		estimator: est,
	}, nil
}

func strictUnmarshal(payload []byte, v interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
