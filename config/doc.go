// Package config loads iterkit run configuration.
//
// LoadConfig uses Viper to read a config.yml (searched under cmd/<service>,
// config/ and the working directory unless given explicitly), exports a
// .env file through godotenv, and lets environment variables override file
// values: PREFETCH_DEPTH sets prefetch.depth. WithEnvPrefix limits the
// override to prefixed variables.
//
// # Usage
//
//	cfg, err := config.Load("iterbench",
//	    config.WithConfigFile(path),
//	    config.WithEnvPrefix("ITERBENCH_"),
//	)
//
// Load applies defaults and validates the result; every failure is a
// CONFIGURATION_ERROR.
package config
