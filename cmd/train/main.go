package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"alsclassifier/internal/config"
	"alsclassifier/internal/data"
	"alsclassifier/internal/persistence"
	"alsclassifier/internal/training"
)

func main() {
	var (
		dataFile   string
		configFile string
		modelDir   string
		reportPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the ALS classifier on a clinical dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if modelDir != "" {
				cfg.ModelDir = modelDir
			}
			if reportPath != "" {
				cfg.ReportPath = reportPath
			}

			records, err := data.NewCSVReader(dataFile).LoadRecords()
			if err != nil {
				return err
			}

			trainer := training.NewTrainer(cfg, log)
			result, err := trainer.Train(records, dataFile)
			if err != nil {
				return err
			}

			store := persistence.NewStore(cfg.ModelDir)
			if err := store.Save(result.Bundle); err != nil {
				return fmt.Errorf("failed to persist model bundle: %w", err)
			}

			log.WithFields(logrus.Fields{
				"run_id":    result.RunID,
				"model_dir": cfg.ModelDir,
			}).Info("model bundle saved")

			fmt.Printf("\nTraining Results:\n")
			fmt.Printf("Best params: %s\n", result.BestParams)
			fmt.Printf("Holdout accuracy: %.4f\n", result.Metrics.Accuracy)
			fmt.Printf("Holdout ROC-AUC: %.4f\n", result.Metrics.ROCAUC)
			fmt.Printf("CV accuracy: %.4f ± %.4f\n",
				result.CVScores.AccuracyMean(), result.CVScores.AccuracyStd())
			fmt.Printf("Training time: %v\n", result.TrainingTime)

			return nil
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "Path to training data CSV file")
	cmd.Flags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	cmd.Flags().StringVarP(&modelDir, "output", "o", "", "Output directory for the model bundle (overrides config)")
	cmd.Flags().StringVarP(&reportPath, "report", "r", "", "Path for the diagnostic report image (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.MarkFlagRequired("data")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
