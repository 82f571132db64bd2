// multicode translates node graph documents into C++17 source files.
//
// Usage:
//
//	multicode generate program.json -o program.cpp
//	multicode validate program.json --strict
//	multicode watch program.json -o program.cpp
//	multicode nodes --package ./nodes
//	multicode schema -o document.schema.json
//	multicode mcp
//
// Flags can also be set through MULTICODE_* environment variables, which
// are read from a .env file in the working directory when present.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := loadEnvFile(envFile()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := NewCLI()
	if err := cli.Execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envFile() string {
	if path := os.Getenv("MULTICODE_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

// loadEnvFile exports the variables of path without overriding the
// environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
