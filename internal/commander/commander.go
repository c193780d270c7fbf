package commander

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"alsclassifier/internal/config"
	"alsclassifier/internal/data"
	"alsclassifier/internal/jobs"
	"alsclassifier/internal/persistence"
	"alsclassifier/internal/predict"
	"alsclassifier/internal/training"
)

// Commander is the interactive shell. It is a thin I/O adapter: all
// validation and pipeline logic lives in the predictor and trainer, so
// the shell only collects input and formats output.
type Commander struct {
	cfg        *config.Config
	log        *logrus.Logger
	store      *persistence.Store
	predictor  *predict.Predictor
	jobManager *jobs.Manager
	scanner    *bufio.Scanner

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func NewCommander(cfg *config.Config, log *logrus.Logger) *Commander {
	return &Commander{
		cfg:        cfg,
		log:        log,
		store:      persistence.NewStore(cfg.ModelDir),
		jobManager: jobs.NewManager(),
		scanner:    bufio.NewScanner(os.Stdin),
		green:      color.New(color.FgGreen).SprintFunc(),
		red:        color.New(color.FgRed).SprintFunc(),
		yellow:     color.New(color.FgYellow).SprintFunc(),
		cyan:       color.New(color.FgCyan).SprintFunc(),
	}
}

func (c *Commander) Start() {
	c.printWelcome()

	for {
		fmt.Print(c.yellow("\nals> "))
		if !c.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(c.scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := strings.ToLower(parts[0])
		args := parts[1:]

		if command == "exit" || command == "quit" {
			fmt.Println("Bye!")
			return
		}

		c.executeCommand(command, args)
	}
}

func (c *Commander) executeCommand(command string, args []string) {
	switch command {
	case "help", "h":
		c.showHelp()
	case "train":
		if len(args) > 0 {
			c.trainModel(args[0])
		} else {
			fmt.Println(c.red("Usage: train <dataset.csv>"))
		}
	case "load":
		c.loadModel()
	case "predict":
		c.predictLoop()
	case "info":
		c.showInfo()
	case "jobs":
		c.showJobs()
	default:
		fmt.Printf("%s Unknown command: %s (try 'help')\n", c.red("✗"), command)
	}
}

func (c *Commander) printWelcome() {
	fmt.Println(c.cyan("ALS Clinical Classifier"))
	fmt.Println("Type 'help' for available commands.")
}

func (c *Commander) showHelp() {
	fmt.Println("Commands:")
	fmt.Println("  train <dataset.csv>  Train a model on a clinical dataset")
	fmt.Println("  load                 Load the persisted model bundle")
	fmt.Println("  predict              Interactive single-patient prediction")
	fmt.Println("  info                 Show loaded model details")
	fmt.Println("  jobs                 List shell job history")
	fmt.Println("  exit                 Leave the shell")
}

func (c *Commander) trainModel(datasetFile string) {
	job := c.jobManager.Run("train", datasetFile, func(job *jobs.Job) (any, error) {
		job.AddLog(fmt.Sprintf("loading dataset %s", datasetFile))
		records, err := data.NewCSVReader(datasetFile).LoadRecords()
		if err != nil {
			return nil, err
		}

		job.AddLog(fmt.Sprintf("training on %d records", len(records)))
		trainer := training.NewTrainer(c.cfg, c.log)
		result, err := trainer.Train(records, datasetFile)
		if err != nil {
			return nil, err
		}

		job.AddLog("saving model bundle")
		if err := c.store.Save(result.Bundle); err != nil {
			return nil, fmt.Errorf("failed to persist model bundle: %w", err)
		}

		return result, nil
	})

	if job.Status == jobs.JobFailed {
		fmt.Printf("%s Training failed: %v\n", c.red("✗"), job.Error)
		return
	}

	result := job.Result.(*training.Result)
	predictor, err := predict.NewPredictor(result.Bundle)
	if err != nil {
		fmt.Printf("%s Training finished but the model is unusable: %v\n", c.red("✗"), err)
		return
	}
	c.predictor = predictor

	fmt.Printf("%s Training complete (run %s)\n", c.green("✓"), result.RunID)
	fmt.Printf("  Best params:  %s\n", result.BestParams)
	fmt.Printf("  Holdout accuracy: %.4f\n", result.Metrics.Accuracy)
	fmt.Printf("  Holdout ROC-AUC:  %.4f\n", result.Metrics.ROCAUC)
	fmt.Printf("  CV accuracy: %.4f ± %.4f\n", result.CVScores.AccuracyMean(), result.CVScores.AccuracyStd())
}

func (c *Commander) loadModel() {
	bundle, err := c.store.Load()
	if err != nil {
		if errors.Is(err, persistence.ErrBundleAbsent) {
			fmt.Printf("%s No usable model bundle found, run 'train' first\n", c.red("✗"))
		} else {
			fmt.Printf("%s Failed to load model: %v\n", c.red("✗"), err)
		}
		return
	}

	predictor, err := predict.NewPredictor(bundle)
	if err != nil {
		fmt.Printf("%s Failed to load model: %v\n", c.red("✗"), err)
		return
	}

	c.predictor = predictor
	fmt.Printf("%s Model loaded (run %s, holdout accuracy %.4f)\n",
		c.green("✓"), bundle.Metadata.RunID, bundle.Metadata.Accuracy)
}

func (c *Commander) showInfo() {
	if c.predictor == nil {
		fmt.Printf("%s No model loaded\n", c.red("✗"))
		return
	}

	meta := c.predictor.Metadata()
	fmt.Printf("Run:          %s\n", meta.RunID)
	fmt.Printf("Dataset:      %s\n", meta.Dataset)
	fmt.Printf("Trained:      %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Accuracy:     %.4f\n", meta.Accuracy)
	fmt.Printf("ROC-AUC:      %.4f\n", meta.ROCAUC)
	fmt.Printf("CV accuracy:  %.4f ± %.4f\n", meta.CVAccuracyMean, meta.CVAccuracyStd)
}

func (c *Commander) showJobs() {
	all := c.jobManager.List()
	if len(all) == 0 {
		fmt.Println("No jobs yet.")
		return
	}

	for _, job := range all {
		fmt.Printf("%s  %-10s %-9s %s\n", job.StartTime.Format("15:04:05"), job.Type, job.GetStatus(), job.Description)
		for _, line := range job.GetLogs() {
			fmt.Printf("    %s\n", line)
		}
	}
}

func (c *Commander) predictLoop() {
	if c.predictor == nil {
		c.loadModel()
		if c.predictor == nil {
			return
		}
	}

	for {
		record := c.promptRecord()

		prediction, err := c.predictor.Predict(record)
		if err != nil {
			fmt.Printf("%s Prediction failed: %v\n", c.red("✗"), err)
		} else {
			c.printPrediction(prediction)
		}

		if !c.promptYesNo("Another prediction?") {
			return
		}
	}
}

func (c *Commander) printPrediction(prediction *predict.Prediction) {
	fmt.Printf("\n%s Prediction: %s (confidence %.1f%%)\n",
		c.green("✓"), c.cyan(prediction.Label), prediction.Confidence*100)

	if len(prediction.RiskFactors) == 0 {
		fmt.Println("  No rule-based risk factors flagged.")
		return
	}
	fmt.Println("  Risk factors:")
	for _, factor := range prediction.RiskFactors {
		fmt.Printf("   - %s\n", factor)
	}
}

// promptRecord collects one patient record field by field, re-prompting
// on invalid input so a typo never aborts the session.
func (c *Commander) promptRecord() *data.RawRecord {
	return &data.RawRecord{
		Age:                 c.promptNumber("Age", inRange(1, 120)),
		Gender:              c.promptChoice("Gender", "Male", "Female"),
		ALSFRSRScore:        c.promptNumber("ALSFRS-R score (0-48)", inRange(0, 48)),
		OnsetDurationMonths: c.promptNumber("Onset duration (months)", nonNegative()),
		FVCPercent:          c.promptNumber("FVC %", inRange(1, 200)),
		MuscleWeaknessScore: c.promptNumber("Muscle weakness score (1-5)", inRange(1, 5)),
		SpeechDifficulty:    c.promptChoice("Speech difficulty", "Yes", "No"),
		RespiratoryIssues:   c.promptChoice("Respiratory issues", "Yes", "No"),
		CognitiveDecline:    c.promptChoice("Cognitive decline", "Yes", "No"),
		BMI:                 c.promptNumber("BMI", inRange(5, 80)),
		Creatinine:          c.promptNumber("Creatinine", nonNegative()),
	}
}

func (c *Commander) promptNumber(label string, check func(decimal.Decimal) error) decimal.Decimal {
	for {
		fmt.Printf("%s: ", label)
		if !c.scanner.Scan() {
			return decimal.Zero
		}

		value, err := decimal.NewFromString(strings.TrimSpace(c.scanner.Text()))
		if err != nil {
			fmt.Println(c.red("  please enter a number"))
			continue
		}
		if err := check(value); err != nil {
			fmt.Println(c.red("  " + err.Error()))
			continue
		}
		return value
	}
}

func (c *Commander) promptChoice(label string, options ...string) string {
	for {
		fmt.Printf("%s (%s): ", label, strings.Join(options, "/"))
		if !c.scanner.Scan() {
			return ""
		}

		input := strings.TrimSpace(c.scanner.Text())
		for _, option := range options {
			if input == option {
				return option
			}
		}
		fmt.Println(c.red("  please enter one of: " + strings.Join(options, ", ")))
	}
}

func (c *Commander) promptYesNo(label string) bool {
	return c.promptChoice(label, "yes", "no") == "yes"
}

func inRange(min, max int64) func(decimal.Decimal) error {
	lo := decimal.NewFromInt(min)
	hi := decimal.NewFromInt(max)
	return func(v decimal.Decimal) error {
		if v.LessThan(lo) || v.GreaterThan(hi) {
			return fmt.Errorf("value must be between %d and %d", min, max)
		}
		return nil
	}
}

func nonNegative() func(decimal.Decimal) error {
	return func(v decimal.Decimal) error {
		if v.IsNegative() {
			return fmt.Errorf("value must not be negative")
		}
		return nil
	}
}
