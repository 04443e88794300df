package contract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// Severity label constants for outlier scores.
const (
	ExtremeValue  = "Extreme"  // Extreme deviation
	SevereValue   = "Severe"   // Severe deviation
	NotableValue  = "Notable"  // Notable deviation
	MarginalValue = "Marginal" // Marginal deviation
)

// Color variables for console output.
var (
	ExtremeColor  = color.New(color.FgRed, color.Bold)     // extremeColor represents standard danger.
	SevereColor   = color.New(color.FgMagenta, color.Bold) // severeColor represents strong, distinct warning.
	NotableColor  = color.New(color.FgYellow)              // notableColor represents standard caution, not bold.
	MarginalColor = color.New(color.FgCyan)                // marginalColor represents low-priority signal.
)

// GetPlainLabel returns a plain text label indicating how far an outlier
// score sits beyond the detection threshold. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainLabel(score, threshold float64) string {
	switch {
	case score >= 3*threshold:
		return ExtremeValue
	case score >= 2*threshold:
		return SevereValue
	case score >= 1.5*threshold:
		return NotableValue
	default:
		return MarginalValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(score, threshold float64) string {
	text := GetPlainLabel(score, threshold)

	switch text {
	case ExtremeValue:
		return ExtremeColor.Sprint(text)
	case SevereValue:
		return SevereColor.Sprint(text)
	case NotableValue:
		return NotableColor.Sprint(text)
	default: // "Marginal"
		return MarginalColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".vint_snapshot.db"
	}
	return filepath.Join(homeDir, ".vint_snapshot.db")
}
