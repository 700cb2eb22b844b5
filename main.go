package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/webqa/ui-test-harness/config"
	"github.com/webqa/ui-test-harness/framework"
	"github.com/webqa/ui-test-harness/uitests"
	"github.com/webqa/ui-test-harness/visual"
	"github.com/webqa/ui-test-harness/webdriver"
)

const statusQueryTimeout = time.Second * 10

type commandParams struct {
	driverURL       string
	configPath      string
	filters         framework.RegexFilters
	callTimeout     time.Duration
	updateBaselines bool
	junitFile       string
	debug           bool
	debugAll        bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.driverURL, "url", "", "WebDriver endpoint URL")
	fs.StringVar(&c.configPath, "config", "", "path to the YAML run manifest")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.DurationVar(&c.callTimeout, "timeout", 0, "timeout per driver protocol call (default 30s)")
	fs.BoolVar(&c.updateBaselines, "update-baselines", false, "overwrite stored baselines from this run's captures")
	fs.StringVar(&c.junitFile, "junit", "", "write a JUnit XML report to this file")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.driverURL == "" {
		fmt.Fprintln(os.Stderr, "-url is required")
		fs.Usage()
		return false
	}
	if c.configPath == "" {
		fmt.Fprintln(os.Stderr, "-config is required")
		fs.Usage()
		return false
	}
	return true
}

// rerunHint builds a shell-safe command line that reruns only the failed
// tests from this run.
func rerunHint(params commandParams, results framework.Results) string {
	var b commandBuilder
	b.add(os.Args[0], "-url", params.driverURL, "-config", params.configPath, "-debug")
	for _, f := range results.Failures {
		b.add("-run", "^"+f.TestID.String()+"$")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	cfg, err := config.Load(params.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	ctx := context.Background()
	client := webdriver.NewClient(params.driverURL, params.callTimeout, mainDebugLogger)
	if err := client.Status(ctx, statusQueryTimeout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "WebDriver endpoint error: %s\n", err)
		os.Exit(1)
	}

	store, err := visual.NewStore(cfg.BaselineDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Baseline store error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	framework.PrintFilterDescription(params.filters)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	opts := uitests.RunOptions{UpdateBaselines: params.updateBaselines}
	results := uitests.RunTestSuite(ctx, client, cfg, opts, store, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(results)

	if params.junitFile != "" {
		if err := framework.WriteJUnitReportFile(results, "ui-test-harness", params.junitFile); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write JUnit report: %s\n", err)
			os.Exit(1)
		}
	}

	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun only the failed tests:")
		fmt.Printf("  %s\n", rerunHint(params, results))
		os.Exit(1)
	}
}
