package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/casedesk/cli/config"
	"github.com/casedesk/cli/internal/logger"
	"github.com/casedesk/cli/internal/tui"
)

func main() {
	var (
		configFlag     = flag.String("config", "", "Path to a config file (default ~/.casedesk/config.yaml)")
		apiFlag        = flag.String("api", "", "Backend base URL, overrides the config file")
		askFlag        = flag.String("ask", "", "Ask the agent one question and print the answer")
		uploadFlag     = flag.Bool("upload", false, "Upload the files given as arguments, then print the document list")
		transcribeFlag = flag.String("transcribe", "", "Transcribe an audio file and run case intake on it")
		listFlag       = flag.String("list", "", "Print a list and exit: cases, clients or documents")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *apiFlag != "" {
		cfg.API.BaseURL = *apiFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	log, err := logger.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		log = zap.NewNop()
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := newCLI(cfg, log, os.Stdout)

	// One-shot modes
	switch {
	case *askFlag != "":
		err = cli.ask(ctx, *askFlag)
	case *uploadFlag:
		err = cli.upload(ctx, flag.Args())
	case *transcribeFlag != "":
		err = cli.transcribe(ctx, *transcribeFlag)
	case *listFlag != "":
		err = cli.list(ctx, *listFlag)
	default:
		err = runTUI(cfg, log)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Sync()
		os.Exit(1)
	}
}

func runTUI(cfg *config.Config, log *zap.Logger) error {
	app, err := tui.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("failed to run app: %w", err)
	}
	return nil
}
