package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"provenance/internal/config"
	"provenance/internal/db"
	"provenance/internal/detect"
	"provenance/internal/ingest"
	"provenance/internal/judge"
	"provenance/internal/prompts"
	"provenance/internal/rewrite"
	"provenance/internal/workspace"
)

const usageText = `Usage: provcheck [flags] [file]

Analyzes a text passage for AI-generation provenance and prints the verdict
as indented JSON. The passage is read from file (plain text, PDF, or DOCX),
or from stdin when piped.
Provider credentials come from the environment (a .env file is honored);
with no providers configured the verdict rests on linguistic analysis alone.

Flags:
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("provcheck", flag.ContinueOnError)
	var (
		configPath string
		store      bool
		history    int
		strategy   string
		quiet      bool
	)
	fs.StringVarP(&configPath, "config", "c", "", "YAML config file overlaying environment defaults")
	fs.BoolVar(&store, "store", false, "Persist the result to the SQLite store")
	fs.IntVar(&history, "history", 0, "Print the N most recent stored results and exit")
	fs.StringVarP(&strategy, "rewrite", "r", "", "Rewrite the passage with the named strategy instead of detecting")
	fs.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress logging")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	_ = godotenv.Load()

	cfg := config.FromEnv()
	if configPath == "" {
		if discovered, ok := workspace.DiscoverConfig(); ok {
			configPath = discovered
		}
	}
	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "provcheck: %v\n", err)
			return 2
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "provcheck: invalid configuration: %v\n", err)
		return 2
	}

	if strategy != "" && !prompts.KnownStrategy(strategy) {
		fmt.Fprintf(os.Stderr, "provcheck: unknown rewrite strategy %q (known: %s)\n",
			strategy, strings.Join(prompts.Strategies(), ", "))
		return 2
	}

	ctx := context.Background()

	if history > 0 {
		return printHistory(ctx, cfg, history)
	}

	if len(fs.Args()) == 0 && !isStdinPipe() {
		fs.Usage()
		return 2
	}
	text, err := readInput(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "provcheck: %v\n", err)
		return 2
	}

	var (
		judgeLog   judge.Logger
		detectLog  detect.Logger
		rewriteLog rewrite.Logger
	)
	if !quiet {
		l := stderrLogger{}
		judgeLog, detectLog, rewriteLog = l, l, l
	}
	clients := judge.ClientsFromConfig(cfg)

	if strategy != "" {
		r := rewrite.New(clients, rewriteLog)
		result, err := r.Rewrite(ctx, text, strategy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "provcheck: rewrite failed: %v\n", err)
			return 1
		}
		return printJSON(result)
	}

	var resultStore detect.ResultStore
	if store {
		resultStore = db.NewStore(cfg.DatabasePath)
	}
	orch := judge.NewOrchestrator(clients, cfg.JudgeTimeout(), judgeLog)
	svc := detect.NewService(cfg, orch, resultStore, detectLog)

	result, err := svc.Detect(ctx, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "provcheck: %v\n", err)
		return 2
	}
	return printJSON(result)
}

func printHistory(ctx context.Context, cfg config.Config, limit int) int {
	records, err := db.NewStore(cfg.DatabasePath).Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "provcheck: %v\n", err)
		return 2
	}
	return printJSON(records)
}

// readInput returns the passage from the single file argument, "-", or stdin.
func readInput(args []string) (string, error) {
	if len(args) > 1 {
		return "", errors.New("at most one input file")
	}
	if len(args) == 1 && args[0] != "-" {
		passage, err := ingest.LoadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("loading %s: %w", args[0], err)
		}
		return passage.Text, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func printJSON(v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "provcheck: encoding output: %v\n", err)
		return 2
	}
	fmt.Println(string(out))
	return 0
}

// isStdinPipe returns true if stdin is a pipe (not a terminal).
func isStdinPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

type stderrLogger struct{}

func (stderrLogger) Log(level, stage, message, detail string) {
	if detail == "" {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", level, stage, message)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s: %s (%s)\n", level, stage, message, detail)
}
