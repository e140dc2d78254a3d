package config

import (
	"os"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	// CI environment is automatically detected
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether cookies must be marked Secure and logs emitted as JSON.
func (e Environment) IsProduction() bool {
	return e == Production
}

// IsTest returns true for the test and CI environments
func (e Environment) IsTest() bool {
	return e == Test || e == CI
}
