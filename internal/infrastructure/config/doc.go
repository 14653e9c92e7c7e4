// Package config handles loading and validating displayhub configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading an optional .env file for local development
//   - Overriding with environment variables
//   - Validation of required fields
//
// Security Considerations:
//   - The JWT signing secret and the device registration secret should be set
//     via environment variables, never committed in the YAML file
//   - The JWT secret must be at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
