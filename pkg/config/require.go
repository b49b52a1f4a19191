package config

import (
	"log"
	"strings"
)

// MustNonEmpty exits the process when a required setting is missing or blank.
func MustNonEmpty(value, envName string) {
	if strings.TrimSpace(value) == "" {
		log.Fatalf("config: required env %s is not set", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("config: required env %s is not set", envName)
	}
}
