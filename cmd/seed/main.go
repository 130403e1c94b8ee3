package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/edulytics/screener/internal/seed"
	"github.com/edulytics/screener/pkg/logger"
)

// Default configuration constants.
const (
	defaultStudents    = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
	defaultYear        = "2025-2026"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		students = flag.Int("students", defaultStudents, "Number of students to generate")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		year     = flag.String("year", defaultYear, "Academic year for generated sessions")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	config := &seed.Config{
		BaseURL:      *baseURL,
		NumStudents:  *students,
		Workers:      *workers,
		Timeout:      *timeout,
		AcademicYear: *year,
		Verbose:      *verbose,
	}

	if err := seed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
