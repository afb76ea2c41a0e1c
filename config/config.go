package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// metadata service parameters
type gdcConfig struct {
	// API generation to query ("current" or "legacy")
	API string `yaml:"api"`
	// root URLs by API generation (overrides the built-in roots)
	Roots map[string]string `yaml:"roots"`
	// per-request timeout in seconds
	Timeout int `yaml:"timeout"`
	// path to a file holding an access token (optional)
	TokenFile string `yaml:"token_file"`
	// path of an on-disk cache of fetched records (optional)
	Cache string `yaml:"cache"`
}

// retry policy for per-file metadata fetches
type retryConfig struct {
	// number of attempts per manifest file
	Attempts int `yaml:"attempts"`
	// delay before the second attempt in milliseconds (doubles thereafter)
	Backoff int `yaml:"backoff"`
	// upper bound on the delay between attempts in milliseconds
	MaxBackoff int `yaml:"max_backoff"`
}

// load file output parameters
type outputConfig struct {
	// directory in which load files are written
	Directory string `yaml:"directory"`
	// attach multi-case files to every case they name, not only known ones
	AllCases bool `yaml:"all_cases"`
	// write a Frictionless Data Package descriptor next to the load files
	DataPackage bool `yaml:"datapackage"`
}

// uuid-to-URL resolution parameters
type resolverConfig struct {
	// two-column TSV (uuid, url) used to resolve file URLs (optional)
	Table string `yaml:"table"`
	// path of the sqlite cache built from the table
	Cache string `yaml:"cache"`
}

// logging parameters
type LoggingConfig struct {
	// "debug", "info", "warn", or "error"
	Level string `yaml:"level"`
	// "text" or "json"
	Format string `yaml:"format"`
	// "stderr", "stdout", or a file path
	Destination string `yaml:"destination"`
}

var GDC gdcConfig
var Retry retryConfig
var Output outputConfig
var Resolver resolverConfig
var Logging LoggingConfig

type configFile struct {
	GDC      gdcConfig      `yaml:"gdc"`
	Retry    retryConfig    `yaml:"retry"`
	Output   outputConfig   `yaml:"output"`
	Resolver resolverConfig `yaml:"resolver"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// returns a configuration holding all defaults
func defaultConfig() configFile {
	var conf configFile
	conf.GDC.API = "current"
	conf.GDC.Timeout = 30
	conf.Retry.Attempts = 5
	conf.Retry.Backoff = 1000
	conf.Retry.MaxBackoff = 30000
	conf.Output.Directory = "."
	conf.Output.DataPackage = true
	conf.Resolver.Cache = "uuid_to_url.db"
	conf.Logging.Level = "info"
	conf.Logging.Format = "text"
	conf.Logging.Destination = "stderr"
	return conf
}

func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	conf := defaultConfig()
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		log.Printf("Couldn't parse configuration data: %s\n", err)
		return err
	}

	// copy the config data into place
	GDC = conf.GDC
	Retry = conf.Retry
	Output = conf.Output
	Resolver = conf.Resolver
	Logging = conf.Logging

	return err
}

func validateGDCParameters(params gdcConfig) error {
	switch params.API {
	case "current", "legacy":
	default:
		return fmt.Errorf("Invalid api: '%s' (must be 'current' or 'legacy')", params.API)
	}
	for name, root := range params.Roots {
		if root == "" {
			return fmt.Errorf("Empty root URL given for api '%s'", name)
		}
	}
	if params.Timeout <= 0 {
		return fmt.Errorf("Invalid timeout: %d (must be positive)", params.Timeout)
	}
	return nil
}

func validateRetryParameters(params retryConfig) error {
	if params.Attempts <= 0 {
		return fmt.Errorf("Invalid attempts: %d (must be positive)", params.Attempts)
	}
	if params.Backoff < 0 {
		return fmt.Errorf("Invalid backoff: %d (must be non-negative)", params.Backoff)
	}
	if params.MaxBackoff < params.Backoff {
		return fmt.Errorf("Invalid max_backoff: %d (must be at least backoff, %d)",
			params.MaxBackoff, params.Backoff)
	}
	return nil
}

func validateLoggingParameters(params LoggingConfig) error {
	switch params.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("Invalid logging level: '%s'", params.Level)
	}
	switch params.Format {
	case "text", "json":
	default:
		return fmt.Errorf("Invalid logging format: '%s'", params.Format)
	}
	return nil
}

func validateConfig() error {
	err := validateGDCParameters(GDC)
	if err != nil {
		return err
	}
	err = validateRetryParameters(Retry)
	if err != nil {
		return err
	}
	if Output.Directory == "" {
		return fmt.Errorf("No output directory was provided!")
	}
	return validateLoggingParameters(Logging)
}

// Init reads the configuration from the given YAML data (which may be empty,
// in which case all defaults apply) and validates it.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	return Validate()
}

// Validate checks the current configuration, e.g. after command line
// overrides have been applied.
func Validate() error {
	return validateConfig()
}

// Root returns the root URL for the configured API generation, or the
// empty string if the built-in root applies.
func Root() string {
	return GDC.Roots[GDC.API]
}
