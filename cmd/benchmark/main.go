package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/pkg/config"
	"github.com/limaJavier/coursetabling/pkg/engine"
	"github.com/limaJavier/coursetabling/pkg/model"
	"github.com/limaJavier/coursetabling/pkg/report"
)

const (
	satisfiableTestDirectory   = "test/data/satisfiable/"
	unsatisfiableTestDirectory = "test/data/unsatisfiable/"
	MB                         = 1024 * 1024
)

// GNU time, used by -exec for wall clock, memory and CPU figures
var timePath = "/usr/bin/time"

type ResultType string

const (
	valid      ResultType = report.OutcomeValid
	invalid    ResultType = report.OutcomeInvalid
	incomplete ResultType = report.OutcomeIncomplete
	none       ResultType = report.OutcomeNone
)

type TestMetadata struct {
	Name        string
	Dir         string
	Satisfiable bool
	Teachers    int
	Rooms       int
	Courses     int
	Timeslots   int
	Classes     int
}

type BenchmarkResult struct {
	Id            string
	Strategy      string
	Solver        string
	Test          TestMetadata
	Run           int
	Seed          uint64
	Duration      int64   // Milliseconds
	Memory        float32 // MB; allocated bytes in process, maximum resident set size when measured with -exec
	CpuPercentage int64   // Only measured with -exec, -1 otherwise
	Fitness       float64
	Assigned      int
	Result        ResultType
}

type options struct {
	satisfiable   string
	unsatisfiable string
	strategies    []string
	runs          int
	seed          uint64
	executable    string
	out           string
	metrics       string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load configuration: %v\n", err)
		os.Exit(1)
	}

	opts := options{}
	var strategies string
	flag.StringVar(&opts.satisfiable, "satisfiable", satisfiableTestDirectory, "Directory of satisfiable instances")
	flag.StringVar(&opts.unsatisfiable, "unsatisfiable", unsatisfiableTestDirectory, "Directory of unsatisfiable instances")
	flag.StringVar(&strategies, "strategies", strings.Join(engine.Strategies(), ","), "Comma-separated strategies to compare")
	flag.IntVar(&opts.runs, "runs", 3, "Runs per strategy and instance")
	flag.Uint64Var(&opts.seed, "seed", 1, "Seed of the first run; run i uses seed+i")
	flag.StringVar(&opts.executable, "exec", "", "Measure the timetabling executable at this path with /usr/bin/time instead of running in process")
	flag.StringVar(&opts.out, "out", "benchmark_results.csv", "Path to the CSV file receiving the results")
	flag.StringVar(&opts.metrics, "metrics", "", "Path to a Prometheus textfile receiving the aggregated metrics")
	flag.DurationVar(&cfg.Timeout, "timeout", time.Minute, "Timeout of a single run")
	flag.Parse()
	opts.strategies = lo.Map(strings.Split(strategies, ","), func(strategy string, _ int) string {
		return strings.ToLower(strings.TrimSpace(strategy))
	})

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := benchmark(context.Background(), cfg, opts, log); err != nil {
		log.Fatal("benchmark failed", zap.Error(err))
	}
}

func benchmark(ctx context.Context, cfg *config.Config, opts options, log *zap.Logger) error {
	if unknown := lo.Without(opts.strategies, engine.Strategies()...); len(unknown) > 0 {
		return fmt.Errorf("unknown strategies: %v", unknown)
	}

	tests, err := getTests(opts.satisfiable, opts.unsatisfiable)
	if err != nil {
		return err
	}

	metrics := report.NewMetrics()
	results := make([]BenchmarkResult, 0, len(tests)*len(opts.strategies)*opts.runs)
	for _, test := range tests {
		for _, strategy := range opts.strategies {
			for i := range opts.runs {
				runCfg := *cfg
				runCfg.Strategy = strategy
				runCfg.Seed = opts.seed + uint64(i)

				log.Info("benchmarking",
					zap.String("test", test.Name),
					zap.String("strategy", strategy),
					zap.Int("run", i),
					zap.Uint64("seed", runCfg.Seed))

				var result BenchmarkResult
				var run *report.Run
				if opts.executable != "" {
					result, run, err = measureExternal(opts.executable, &runCfg, test)
				} else {
					result, run, err = measure(ctx, &runCfg, test, log)
				}
				if err != nil {
					return fmt.Errorf("test \"%v\" with strategy \"%v\": %w", test.Name, strategy, err)
				}
				result.Run = i
				metrics.Observe(run)
				results = append(results, result)
			}
		}
	}

	if err := toCsv(opts.out, results); err != nil {
		return err
	}
	if opts.metrics != "" {
		if err := metrics.WriteToTextfile(opts.metrics); err != nil {
			return err
		}
	}
	log.Info("benchmark finished", zap.Int("results", len(results)), zap.String("out", opts.out))
	return nil
}

func getTests(satisfiable, unsatisfiable string) ([]TestMetadata, error) {
	tests := make([]TestMetadata, 0)
	for _, tuple := range lo.Zip2([]string{satisfiable, unsatisfiable}, []bool{true, false}) {
		directory, isSatisfiable := tuple.A, tuple.B
		if directory == "" {
			continue
		}
		entries, err := os.ReadDir(directory)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory: %w", err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(directory, entry.Name())
			input, err := model.InputFromJson(dir)
			if err != nil {
				return nil, fmt.Errorf("cannot parse instance %v: %w", dir, err)
			}

			tests = append(tests, TestMetadata{
				Name:        entry.Name(),
				Dir:         dir,
				Satisfiable: isSatisfiable,
				Teachers:    len(input.TeacherIds),
				Rooms:       len(input.RoomIds),
				Courses:     len(input.CourseIds),
				Timeslots:   len(input.TimeslotIds),
				Classes: len(lo.Uniq(lo.Map(input.CourseIds, func(courseId string, _ int) string {
					return input.Courses[courseId].StudentClass
				}))),
			})
		}
	}

	return tests, nil
}

// measure solves the instance in process, reporting the bytes allocated during the run as memory
func measure(ctx context.Context, cfg *config.Config, test TestMetadata, log *zap.Logger) (BenchmarkResult, *report.Run, error) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	run, _, err := engine.Run(ctx, cfg, test.Dir, log)
	runtime.ReadMemStats(&after)
	if err != nil {
		return BenchmarkResult{}, nil, err
	}

	result := newResult(cfg, test, run)
	result.Memory = float32(after.TotalAlloc-before.TotalAlloc) / MB
	return result, run, nil
}

// measureExternal runs the executable under /usr/bin/time -v and reads the run from its JSON output
func measureExternal(executable string, cfg *config.Config, test TestMetadata) (BenchmarkResult, *report.Run, error) {
	cmd := exec.Command(timePath, "-v", executable,
		"-data", test.Dir,
		"-strategy", cfg.Strategy,
		"-solver", cfg.SAT.Solver,
		"-seed", strconv.FormatUint(cfg.Seed, 10),
		"-timeout", cfg.Timeout.String(),
		"-format", "json")

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return BenchmarkResult{}, nil, fmt.Errorf("cannot run %v: %w", timePath, err)
	}
	if code := cmd.ProcessState.ExitCode(); code != 10 && code != 15 && code != 20 {
		return BenchmarkResult{}, nil, fmt.Errorf("executable exited with code %d: %v", code, strings.TrimSpace(stdErr.String()))
	}

	run := &report.Run{}
	if err := json.Unmarshal(stdOut.Bytes(), run); err != nil {
		return BenchmarkResult{}, nil, fmt.Errorf("cannot decode run: %w", err)
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) (string, error) {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			return "", fmt.Errorf("substring \"%v\" could not be found", substr)
		}
		return line, nil
	}

	result := newResult(cfg, test, run)
	line, err := getLine("wall clock")
	if err == nil {
		result.Duration, err = parseDurationLine(line)
	}
	if err != nil {
		return BenchmarkResult{}, nil, err
	}
	if line, err = getLine("maximum resident set size"); err == nil {
		result.Memory, err = parseMemoryLine(line)
	}
	if err != nil {
		return BenchmarkResult{}, nil, err
	}
	if line, err = getLine("percent of cpu"); err == nil {
		result.CpuPercentage, err = parseCpuPercentageLine(line)
	}
	if err != nil {
		return BenchmarkResult{}, nil, err
	}
	return result, run, nil
}

func newResult(cfg *config.Config, test TestMetadata, run *report.Run) BenchmarkResult {
	result := BenchmarkResult{
		Id:            run.Id,
		Strategy:      cfg.Strategy,
		Test:          test,
		Seed:          cfg.Seed,
		Duration:      run.Duration.Milliseconds(),
		CpuPercentage: -1,
		Fitness:       run.Fitness.Total,
		Assigned:      run.Assigned(),
		Result:        resultType(run),
	}
	if cfg.Strategy == config.StrategySAT {
		result.Solver = cfg.SAT.Solver
	}
	return result
}

func resultType(run *report.Run) ResultType {
	return ResultType(run.Outcome())
}

func toCsv(path string, results []BenchmarkResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Id", "Strategy", "Solver", "Test", "Satisfiable", "Teachers", "Rooms", "Courses", "Timeslots", "Classes", "Run", "Seed", "Duration(ms)", "Memory(MB)", "CPU(%)", "Fitness", "Assigned", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(record(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func record(result BenchmarkResult) []string {
	cpu := ""
	if result.CpuPercentage >= 0 {
		cpu = fmt.Sprintf("%d", result.CpuPercentage)
	}
	return []string{
		result.Id,
		result.Strategy,
		result.Solver,
		result.Test.Name,
		fmt.Sprintf("%v", result.Test.Satisfiable),
		fmt.Sprintf("%d", result.Test.Teachers),
		fmt.Sprintf("%d", result.Test.Rooms),
		fmt.Sprintf("%d", result.Test.Courses),
		fmt.Sprintf("%d", result.Test.Timeslots),
		fmt.Sprintf("%d", result.Test.Classes),
		fmt.Sprintf("%d", result.Run),
		fmt.Sprintf("%d", result.Seed),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%.1f", result.Memory),
		cpu,
		fmt.Sprintf("%.4f", result.Fitness),
		fmt.Sprintf("%d/%d", result.Assigned, result.Test.Courses),
		string(result.Result),
	}
}

func parseDurationLine(line string) (int64, error) {
	_, durationStr, ok := strings.Cut(line, "(h:mm:ss or m:ss):")
	if !ok {
		return 0, fmt.Errorf("unexpected duration line: %v", line)
	}
	return parseDuration(strings.TrimSpace(durationStr))
}

// parseDuration converts an "h:mm:ss.cc" or "m:ss.cc" wall clock into milliseconds
func parseDuration(durationStr string) (int64, error) {
	parts := strings.Split(durationStr, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("unexpected duration format: %v", durationStr)
	}

	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected duration format: %v", durationStr)
	}
	total := seconds
	scale := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		value, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("unexpected duration format: %v", durationStr)
		}
		total += float64(value) * scale
		scale *= 60
	}
	return int64(total*1000 + 0.5), nil
}

func parseMemoryLine(line string) (float32, error) {
	_, memoryStr, _ := strings.Cut(line, ":")
	kilobytes, err := strconv.ParseFloat(strings.TrimSpace(memoryStr), 32)
	if err != nil {
		return 0, fmt.Errorf("unexpected memory line: %v", line)
	}
	return float32(kilobytes) / 1024, nil
}

func parseCpuPercentageLine(line string) (int64, error) {
	_, percentageStr, _ := strings.Cut(line, ":")
	percentage, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(percentageStr), "%"))
	if err != nil {
		return 0, fmt.Errorf("unexpected cpu line: %v", line)
	}
	return int64(percentage), nil
}
