package main

import (
	"context"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/webtest-hq/browser-test-harness/data"
	"github.com/webtest-hq/browser-test-harness/framework"
	"github.com/webtest-hq/browser-test-harness/framework/runner"
	"github.com/webtest-hq/browser-test-harness/harness"
	"github.com/webtest-hq/browser-test-harness/report"
	"github.com/webtest-hq/browser-test-harness/unitdef"
)

const statusQueryTimeout = time.Second * 10

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("browser-test-harness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	console, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !console.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*report.ConsoleSink, error) {
	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	settings, err := loadValuesFile(params.settingsFile)
	if err != nil {
		return nil, err
	}
	secrets, err := loadValuesFile(params.secretsFile)
	if err != nil {
		return nil, err
	}

	service, err := harness.NewDriverService(params.driverURL, statusQueryTimeout, mainDebugLogger, os.Stdout)
	if err != nil {
		return nil, err
	}
	browser, err := service.NewBrowser(params.browserName, nil, mainDebugLogger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = browser.Close() }()

	console := &report.ConsoleSink{Output: os.Stdout}
	sharedSinks, flush, err := buildSharedSinks(params, console)
	if err != nil {
		return nil, err
	}

	provider := unitdef.NewProvider()
	fromSuite := params.suite || len(params.unitFiles) > 1
	runLogger := log.New(os.Stdout, "", 0)

	var runErr error
	for _, path := range params.unitFiles {
		unitName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		reportDir := filepath.Join(params.reportDir, unitName)
		if err := os.MkdirAll(reportDir, 0755); err != nil {
			return nil, err
		}

		sinks := append([]runner.Sink{report.NewJSONFileSink(reportDir)}, sharedSinks...)
		unitRunner := runner.NewUnitRunner(provider, &report.MultiSink{Sinks: sinks})
		if params.filters.IsDefined() {
			unitRunner = unitRunner.WithFilter(params.filters.Match)
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read unit file %q: %w", path, err)
		}
		err = unitRunner.RunUnit(runner.RunContext{
			TestFile:    unitName,
			Project:     params.project,
			Browser:     runner.BrowserDefinition{Name: params.browserName, Capabilities: service.Info().Capabilities},
			Driver:      browser,
			Environment: params.environment,
			Settings:    settings,
			ReportDir:   reportDir,
			Secrets:     secrets,
			FromSuite:   fromSuite,
			Logger:      runLogger,
		}, source)
		if err != nil && runErr == nil {
			runErr = err
		}
	}

	fmt.Println()
	console.PrintSummary()

	if err := flush(); err != nil && runErr == nil {
		runErr = err
	}
	if params.stopServiceAtEnd {
		fmt.Println("Stopping driver service")
		if err := service.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop driver service: %s\n", err)
		}
	}
	return console, runErr
}

// buildSharedSinks assembles the sinks every unit-run writes to: the console,
// plus whichever optional destinations the command line enabled. The returned
// flush function finalizes destinations that buffer (JUnit) or hold
// connections (Redis).
func buildSharedSinks(params commandParams, console *report.ConsoleSink) ([]runner.Sink, func() error, error) {
	sinks := []runner.Sink{console}
	flushers := []func() error{}

	if params.jUnitFile != "" {
		junit := report.NewJUnitSink(params.jUnitFile)
		sinks = append(sinks, junit)
		flushers = append(flushers, junit.Flush)
	}
	if params.redisAddr != "" {
		redis := report.NewRedisSink(params.redisAddr, "results")
		sinks = append(sinks, redis)
		flushers = append(flushers, redis.Close)
	}
	if params.dynamoDBTable != "" {
		dynamo, err := report.NewDynamoDBSink(context.Background(), params.dynamoDBTable)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, dynamo)
	}
	if params.consulPrefix != "" {
		consul, err := report.NewConsulSink(params.consulPrefix)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, consul)
	}

	flush := func() error {
		var first error
		for _, f := range flushers {
			if err := f(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return sinks, flush, nil
}

func loadValuesFile(path string) (map[string]ldvalue.Value, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	var parsed map[string]interface{}
	if err := data.ParseJSONOrYAML(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	ret := make(map[string]ldvalue.Value, len(parsed))
	for k, v := range parsed {
		ret[k] = ldvalue.CopyArbitraryValue(v)
	}
	return ret, nil
}
