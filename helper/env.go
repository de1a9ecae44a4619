package helper

import (
	"fmt"
	"os"
)

// GetEnvVar fetches OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	} else {
		if mandatory {
			return "", fmt.Errorf("environment variable %v is not set", k)
		} else {
			return "", nil
		}
	}
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it will apply the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	v = os.Getenv(name)
	if v == "" && defaultValue != "" { // if the environment variable is not set and we have been given a default value...
		v = defaultValue
	}
	return
}
