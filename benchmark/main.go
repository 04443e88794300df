// Package main provides a performance benchmarking tool for the vint CLI.
// It generates synthetic revision triples at several sizes, ingests them into
// throwaway snapshot stores and times the query surface, treating the first
// successful run as cold and averaging the rest as warm. Results land in a
// timestamped CSV for analysis and documentation.
//
// Prerequisites:
// - vint binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for fixture files and snapshot databases
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds one command's timings (no-persistence average, cold
// run and average of warm runs).
type BenchmarkResult struct {
	Fixture     string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoStoreRuns int
	StoreRuns   int
	Fixtures    map[string]int // fixture name -> observation count
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     2 * time.Minute,
		NoStoreRuns: 3,
		StoreRuns:   4,
		Fixtures: map[string]int{
			"SMALL":  200,
			"MEDIUM": 2000,
			"LARGE":  20000,
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the vint binary and work directory exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("vint"); err != nil {
		return fmt.Errorf("vint binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// writeFixture generates a daily triple file with three releases per
// observation, one of them a deliberate outlier.
func writeFixture(config BenchmarkConfig, name string, observations int) (string, error) {
	path := filepath.Join(config.WorkDir, name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"observation_date", "vintage_date", "value"}); err != nil {
		return "", err
	}
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < observations; i++ {
		obs := start.AddDate(0, 0, i)
		value := 100.0 + float64(i%7)
		if i == observations/2 {
			value *= 25 // one spike for the outlier scan
		}
		for release := 0; release < 3; release++ {
			row := []string{
				obs.Format("2006-01-02"),
				obs.AddDate(0, 0, 30+release*28).Format("2006-01-02"),
				fmt.Sprintf("%.2f", value+float64(release)*0.1),
			}
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
	}
	return path, nil
}

// runBenchmarks executes all benchmark tests across configured fixture sizes.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d fixtures, %v timeout, no-store: %d runs, store: %d runs\n",
		len(config.Fixtures), config.Timeout, config.NoStoreRuns, config.StoreRuns)

	for _, name := range []string{"SMALL", "MEDIUM", "LARGE"} {
		observations := config.Fixtures[name]
		fmt.Printf("Benchmarking %s (%d observations)\n", name, observations)

		csvPath, err := writeFixture(config, name, observations)
		if err != nil {
			fmt.Printf("  Fixture generation failed: %v\n", err)
			continue
		}

		ingestArgs := []string{"ingest", name, "--source", "csv", "--csv-path", csvPath, "--frequency", "daily"}
		results = append(results, runBenchmarkSuite(config, name, "ingest", ingestArgs, ingestArgs))

		queryArgs := []string{"latest", name, "--output", "json", "--output-file", os.DevNull}
		results = append(results, runBenchmarkSuite(config, name, "latest", queryArgs, ingestArgs))

		outlierArgs := []string{"outliers", name, "--kind", "level", "--output", "json", "--output-file", os.DevNull}
		results = append(results, runBenchmarkSuite(config, name, "outliers", outlierArgs, ingestArgs))
	}

	return results
}

// runBenchmarkSuite runs both no-store and store-backed phases for a command.
// Query commands need an ingest first, so each store-backed phase seeds a
// fresh database with setupArgs before timing.
func runBenchmarkSuite(config BenchmarkConfig, fixture, command string, args, setupArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, fixture)

	runPhase := func(backend, dbFile string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		env := []string{"VINT_BACKEND=" + backend}
		if dbFile != "" {
			env = append(env, "VINT_DB_CONNECT="+dbFile)
			if command != "ingest" {
				_ = runOnce(config, setupArgs, env) // seed the snapshot
			}
		}
		cold, times := runBenchmark(config, args, env, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: no persistence at all. Queries need seeded storage, so only
	// ingest has a meaningful no-store run.
	noStoreAvg := "n/a"
	if command == "ingest" {
		_, noStoreAvg = runPhase("none", "", config.NoStoreRuns, "No-store")
	}

	// Phase 2: SQLite-backed snapshot
	dbFile := filepath.Join(config.WorkDir, fmt.Sprintf("bench_%s_%s.db", fixture, command))
	coldTime, warmAvg := runPhase("sqlite", dbFile, config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Fixture:     fixture,
		Command:     command,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a vint command multiple times and returns the cold
// time and the warm times.
func runBenchmark(config BenchmarkConfig, args, env []string, numRuns int) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()
		if err := runOnce(config, args, env); err == nil {
			times = append(times, time.Since(start).Seconds())
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// runOnce executes one vint invocation with a timeout.
func runOnce(config BenchmarkConfig, args, env []string) error {
	cmd := exec.Command("vint", args...)
	cmd.Env = append(os.Environ(), env...)

	done := make(chan error, 1)
	go func() { done <- cmd.Run() }()

	select {
	case err := <-done:
		return err
	case <-time.After(config.Timeout):
		_ = cmd.Process.Kill()
		return fmt.Errorf("timed out after %v", config.Timeout)
	}
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/vint_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"fixture", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		row := []string{result.Fixture, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range []string{"ingest", "latest", "outliers"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-store: %s, Cold: %s, Warm: %s\n",
					result.Fixture, result.NoStoreTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
