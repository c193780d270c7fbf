package persistence

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"alsclassifier/internal/models"
	"alsclassifier/internal/preprocessing"
)

// ErrBundleAbsent means no usable model bundle exists. A partial bundle
// (any artifact missing, undecodable, or from a different save) is
// reported the same way: a mismatched classifier/scaler/schema triple
// must never be used.
var ErrBundleAbsent = errors.New("no usable model bundle")

const (
	classifierArtifact = "classifier.gob"
	scalerArtifact     = "scaler.gob"
	schemaArtifact     = "schema.gob"
)

// ModelBundle is the co-dependent triple the predictor needs, plus
// training metadata. The three artifacts are saved and loaded together.
type ModelBundle struct {
	Model    models.Model
	Scaler   *preprocessing.Scaler
	Schema   *preprocessing.FeatureSchema
	Metadata BundleMetadata
}

type BundleMetadata struct {
	RunID          string
	Dataset        string
	Accuracy       float64
	ROCAUC         float64
	CVAccuracyMean float64
	CVAccuracyStd  float64
	TrainingTime   time.Duration
	CreatedAt      time.Time
	Parameters     map[string]any
}

// On-disk artifact shapes. Every artifact of one save carries the same
// write token; Load refuses to assemble artifacts whose tokens differ,
// so a save that failed partway through a re-save cannot splice a new
// classifier onto an old scaler or schema.
type classifierRecord struct {
	Token    string
	Model    models.Model
	Metadata BundleMetadata
}

type scalerRecord struct {
	Token  string
	Scaler *preprocessing.Scaler
}

type schemaRecord struct {
	Token  string
	Schema *preprocessing.FeatureSchema
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	registerModels()
	return &Store{dir: dir}
}

func registerModels() {
	gob.Register(&models.DecisionTree{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.TreeNode{})
}

// Save writes the three artifacts. All three are fully staged as temp
// files before the first rename, so an encoding or write failure leaves
// the previous bundle untouched and a concurrent loader never observes
// a half-written artifact.
func (s *Store) Save(bundle *ModelBundle) error {
	if bundle.Model == nil || bundle.Scaler == nil || bundle.Schema == nil {
		return fmt.Errorf("refusing to save incomplete bundle")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	token := uuid.NewString()
	artifacts := []struct {
		name  string
		value any
	}{
		{classifierArtifact, &classifierRecord{Token: token, Model: bundle.Model, Metadata: bundle.Metadata}},
		{scalerArtifact, &scalerRecord{Token: token, Scaler: bundle.Scaler}},
		{schemaArtifact, &schemaRecord{Token: token, Schema: bundle.Schema}},
	}

	staged := make([]string, 0, len(artifacts))
	discard := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, artifact := range artifacts {
		tmp, err := s.stageArtifact(artifact.name, artifact.value)
		if err != nil {
			discard()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, artifact := range artifacts {
		if err := os.Rename(staged[i], filepath.Join(s.dir, artifact.name)); err != nil {
			discard()
			return fmt.Errorf("failed to publish artifact %s: %w", artifact.name, err)
		}
	}

	return nil
}

// Load returns the bundle, or ErrBundleAbsent unless all three
// artifacts exist, decode, and come from the same save.
func (s *Store) Load() (*ModelBundle, error) {
	var classifier classifierRecord
	if err := s.readArtifact(classifierArtifact, &classifier); err != nil {
		return nil, err
	}

	var scaler scalerRecord
	if err := s.readArtifact(scalerArtifact, &scaler); err != nil {
		return nil, err
	}

	var schema schemaRecord
	if err := s.readArtifact(schemaArtifact, &schema); err != nil {
		return nil, err
	}

	if classifier.Token != scaler.Token || classifier.Token != schema.Token {
		return nil, fmt.Errorf("%w: artifacts belong to different saves", ErrBundleAbsent)
	}

	return &ModelBundle{
		Model:    classifier.Model,
		Scaler:   scaler.Scaler,
		Schema:   schema.Schema,
		Metadata: classifier.Metadata,
	}, nil
}

func (s *Store) stageArtifact(name string, value any) (string, error) {
	tmp := filepath.Join(s.dir, name+".tmp")

	file, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact %s: %w", name, err)
	}

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(value); err != nil {
		file.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to encode artifact %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}

	return tmp, nil
}

func (s *Store) readArtifact(name string, value any) error {
	file, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("%w: artifact %s unreadable: %v", ErrBundleAbsent, name, err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("%w: artifact %s undecodable: %v", ErrBundleAbsent, name, err)
	}

	return nil
}
