package seed

import "os"

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Screener Seed Tool
==================

Generates a demo roster with benchmark-consistent test sessions and
submits it to a running screening service.

Usage:
  go run cmd/seed/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -students int
        Number of students to generate (default 200)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -year string
        Academic year for generated sessions (default "2025-2026")
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed/main.go

  # Seed a larger roster against a custom address
  go run cmd/seed/main.go -students 2000 -workers 16 -url http://localhost:9090
`)
}
