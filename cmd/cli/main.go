package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"alsclassifier/internal/commander"
	"alsclassifier/internal/config"
)

func main() {
	var configFile string

	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Interactive shell for training and single-patient predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			log := logrus.New()
			log.SetOutput(os.Stdout)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			log.SetLevel(logrus.WarnLevel)

			commander.NewCommander(cfg, log).Start()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
