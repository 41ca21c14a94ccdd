package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

type commandParams struct {
	driverURL        string
	browserName      string
	project          string
	environment      string
	reportDir        string
	settingsFile     string
	secretsFile      string
	filters          runner.RegexFilters
	suite            bool
	stopServiceAtEnd bool
	debugAll         bool
	jUnitFile        string
	redisAddr        string
	dynamoDBTable    string
	consulPrefix     string
	unitFiles        []string
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.driverURL, "url", "", "driver service URL")
	fs.StringVar(&c.browserName, "browser", "chrome", "browser to request from the driver service")
	fs.StringVar(&c.project, "project", "", "project name stamped onto the run")
	fs.StringVar(&c.environment, "env", "", "environment name stamped onto each record")
	fs.StringVar(&c.reportDir, "reportdir", "report", "directory for report output, one subdirectory per unit")
	fs.StringVar(&c.settingsFile, "settings", "", "JSON or YAML file with settings values for body code")
	fs.StringVar(&c.secretsFile, "secrets", "", "JSON or YAML file with secret values (never written to records)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select test functions to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select test functions not to run")
	fs.BoolVar(&c.suite, "suite", false, "treat the run as a suite, honoring each unit's skip flag")
	fs.BoolVar(&c.stopServiceAtEnd, "stop-service-at-end", false, "tell driver service to exit after the run")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging of driver service traffic")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.redisAddr, "redis", "", "also ship records to Redis at the given address")
	fs.StringVar(&c.dynamoDBTable, "dynamodb-table", "", "also ship records to the given DynamoDB table")
	fs.StringVar(&c.consulPrefix, "consul-prefix", "", "also ship records to Consul KV under the given prefix")

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
	c.unitFiles = fs.Args()
	if len(c.unitFiles) == 0 {
		fmt.Fprintln(os.Stderr, "at least one unit file is required")
		fs.Usage()
		return false
	}
	return true
}
