// Command affordability prints the affordability analysis for applicant
// records stored as JSON or YAML files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/lead-intake/internal/config"
	"github.com/iwvelando/lead-intake/internal/intake"
	"github.com/iwvelando/lead-intake/internal/logging"
	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/constants"
	"github.com/iwvelando/lead-intake/pkg/output"
	"github.com/iwvelando/lead-intake/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	recordLocation := flag.String("record", "", "path to an applicant record (JSON or YAML)")
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file (optional)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [-record file] [file ...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if *recordLocation != "" {
		paths = append([]string{*recordLocation}, paths...)
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	formatter, err := conf.Output.Formatter()
	if err != nil {
		logger.Fatal("invalid output locale",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	calculator := affordability.NewCalculator(conf.Policy.Apply(affordability.DefaultPolicy()))

	results := make([]output.Result, 0, len(paths))
	for _, path := range paths {
		record, err := readRecord(path)
		if err != nil {
			logger.Fatal("failed to read applicant record",
				zap.String("op", "main"),
				zap.String("path", path),
				zap.Error(err),
			)
		}

		name := record.Personal.FullName()
		if name == "" {
			name = filepath.Base(path)
		}
		results = append(results, output.Result{
			Name:     name,
			Analysis: calculator.Analyze(record),
			Warnings: validation.ValidateApplicant(record, calculator.Policy()),
		})
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, formatter, results)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, results)
	}
}

// loadConfiguration falls back to defaults when the file does not exist.
func loadConfiguration(path string) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.LoadConfigurationFromReader(strings.NewReader(""))
	}
	return config.LoadConfiguration(path)
}

func readRecord(path string) (affordability.ApplicantRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return affordability.ApplicantRecord{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return affordability.ApplicantRecord{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return intake.DecodeYAML(data)
	}
	return intake.Decode(data)
}
