package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devtrail/devtrail/internal/config"
	"github.com/devtrail/devtrail/internal/devtrail"
)

var (
	configPath  string
	outputDir   string
	jsonOut     bool
	excelOut    bool
	debugMode   bool
	concurrency int
)

var rootCmd = &cobra.Command{
	Use:   "devtrail",
	Short: "Build a cross-source activity timeline for a team",
	Long: `devtrail merges JIRA activity streams and local git history into a
single time-ordered timeline per project, exported as CSV.`,
	RunE: run,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "f", "", "Path to the YAML model file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "reports", "Output directory")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "Also write per-project JSON timelines")
	rootCmd.Flags().BoolVar(&excelOut, "excel", false, "Also write an Excel summary workbook")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent JIRA fetches per project")
	_ = rootCmd.MarkFlagRequired("config")
}

func run(cmd *cobra.Command, args []string) error {
	// Flags parsed fine; failures from here on are real errors, not usage
	// mistakes.
	cmd.SilenceUsage = true

	logger, err := newLogger(debugMode)
	if err != nil {
		log.Fatalf("could not initiate zap logger: %v", err)
	}
	//nolint:errcheck
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := godotenv.Load(); err != nil {
		sugar.Debugf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", configPath, err)
	}
	sugar.Infof("loaded %d users and %d projects from %s", len(cfg.Users), len(cfg.Projects), configPath)

	app, err := devtrail.New(cfg, sugar, devtrail.Options{
		OutputDir:   outputDir,
		JSON:        jsonOut,
		Excel:       excelOut,
		Concurrency: concurrency,
	})
	if err != nil {
		return err
	}

	bar := newSpinner("Collecting activity")
	err = app.Run(context.Background())
	finishBar(bar)

	if err != nil {
		return err
	}

	fmt.Printf("\nTimelines saved to %s/\n", outputDir)
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
