package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.hippo/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".hippo", "logs")
	}
	return filepath.Join(home, ".hippo", "logs")
}

// DefaultLogPath returns the default engine log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "engine.log")
}

// SchedulerLogPath returns the periodic re-sync scheduler's log path, used
// when the scheduler runs as a detached background process.
func SchedulerLogPath() string {
	return filepath.Join(DefaultLogDir(), "scheduler.log")
}

// LogSource represents the source of logs to view.
type LogSource string

const (
	// LogSourceEngine is the main engine log (default).
	LogSourceEngine LogSource = "engine"
	// LogSourceScheduler is the background re-sync scheduler's log.
	LogSourceScheduler LogSource = "scheduler"
	// LogSourceAll combines all log sources.
	LogSourceAll LogSource = "all"
)

// FindLogFile attempts to find the log file for viewing.
// Priority:
// 1. Explicit path (if provided)
// 2. ~/.hippo/logs/engine.log (global)
//
// Returns an error if no log file is found.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	globalPath := DefaultLogPath()
	if _, err := os.Stat(globalPath); err == nil {
		return globalPath, nil
	}

	return "", fmt.Errorf("no log file found. Engine may not have run with --debug yet.\nExpected at: %s", globalPath)
}

// FindLogFileBySource finds log files based on the source type.
// Returns a list of log file paths that exist.
func FindLogFileBySource(source LogSource, explicit string) ([]string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return []string{explicit}, nil
		}
		return nil, fmt.Errorf("log file not found: %s", explicit)
	}

	var paths []string
	var checked []string

	switch source {
	case LogSourceEngine:
		p := DefaultLogPath()
		checked = append(checked, p)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}

	case LogSourceScheduler:
		p := SchedulerLogPath()
		checked = append(checked, p)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}

	case LogSourceAll:
		enginePath := DefaultLogPath()
		schedPath := SchedulerLogPath()
		checked = append(checked, enginePath, schedPath)

		if _, err := os.Stat(enginePath); err == nil {
			paths = append(paths, enginePath)
		}
		if _, err := os.Stat(schedPath); err == nil {
			paths = append(paths, schedPath)
		}

	default:
		return nil, fmt.Errorf("unknown log source: %s (use: engine, scheduler, all)", source)
	}

	if len(paths) == 0 {
		hint := getLogHint(source)
		return nil, fmt.Errorf("no log files found for source '%s'.\nChecked: %v\n\n%s", source, checked, hint)
	}

	return paths, nil
}

// ParseLogSource parses a string into a LogSource.
func ParseLogSource(s string) LogSource {
	switch s {
	case "scheduler":
		return LogSourceScheduler
	case "all":
		return LogSourceAll
	default:
		return LogSourceEngine
	}
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	dir := DefaultLogDir()
	return os.MkdirAll(dir, 0o755)
}

// getLogHint returns a helpful message on how to generate logs for the given source.
func getLogHint(source LogSource) string {
	switch source {
	case LogSourceEngine:
		return "To generate engine logs:\n  hippo --debug watch"
	case LogSourceScheduler:
		return "To generate scheduler logs:\n  hippo --debug sync --daemon"
	case LogSourceAll:
		return "To generate logs:\n  Engine:    hippo --debug watch\n  Scheduler: hippo --debug sync --daemon"
	default:
		return ""
	}
}
