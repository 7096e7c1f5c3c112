package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config, saved to configPath.
func RunWizard(configPath string) (*Config, error) {
	return runWizard(configPath, nil)
}

// runWizard is RunWizard with an injectable input stream. A nil stream
// reads from the terminal.
func runWizard(configPath string, in io.ReadCloser) (*Config, error) {
	fmt.Println("Welcome to molscope! Let's configure your viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Page title.
	titlePrompt := promptui.Prompt{
		Label:   "Page title",
		Default: cfg.Title,
		Stdin:   in,
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}

	// 2. Data directory.
	dirPrompt := promptui.Prompt{
		Label:   "Directory containing dataset files",
		Default: cfg.DataDir,
		Stdin:   in,
	}
	dataDir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Listen port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Port),
		Stdin:   in,
		Validate: func(input string) error {
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 4. Dataset globs.
	globsPrompt := promptui.Prompt{
		Label:   "Dataset patterns (comma-separated globs)",
		Default: strings.Join(cfg.Datasets, ", "),
		Stdin:   in,
	}
	globsStr, err := globsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dataset patterns: %w", err)
	}
	globs := splitAndTrim(globsStr)
	if len(globs) == 0 {
		globs = DefaultDatasetGlobs
	}

	// 5. Settings database path.
	dbPrompt := promptui.Prompt{
		Label:   "Settings database path",
		Default: cfg.Database,
		Stdin:   in,
	}
	database, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}

	cfg.Title = title
	cfg.DataDir = dataDir
	cfg.Port = port
	cfg.Datasets = globs
	cfg.Database = database

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
