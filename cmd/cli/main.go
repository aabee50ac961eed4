package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"csvpilot/domain/analysis"
	"csvpilot/internal/config"
	"csvpilot/internal/container"
	"csvpilot/internal/workflow"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// One-shot pipeline run: analyze a file, print the workflow result as JSON
// and exit non-zero when profiling fails.
func main() {
	var (
		filePath = flag.String("file", "", "path to the CSV/Excel file to analyze")
		target   = flag.String("target", "", "target column override")
		problem  = flag.String("problem", "", "problem type override (regression|classification)")
		strategy = flag.String("target-strategy", "", "target selection strategy (last|infer)")
		user     = flag.String("user", "", "user namespace for output artifacts")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -file <path> [-target col] [-problem type] [-target-strategy last|infer]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	deps, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer deps.Close()

	var hint *analysis.Hint
	if *target != "" || *problem != "" || *strategy != "" {
		hint = &analysis.Hint{
			TargetColumn:   *target,
			ProblemType:    analysis.ProblemType(*problem),
			TargetStrategy: analysis.TargetStrategy(*strategy),
		}
	}

	result, err := deps.Orchestrator.Run(context.Background(), workflow.Request{
		FilePath: *filePath,
		User:     *user,
		Hint:     hint,
	})
	if err != nil {
		log.Fatalf("Workflow failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
