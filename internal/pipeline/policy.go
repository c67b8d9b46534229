package pipeline

import (
	"fmt"
	"strings"
)

// PersistPolicy decides whether a finished run rewrites the catalog.
type PersistPolicy string

const (
	// PersistOnProgress rewrites only when at least one entry was processed
	// or skipped, so an all-failure run never clobbers a good catalog.
	PersistOnProgress PersistPolicy = "progress"
	// PersistAlways rewrites after every run; failed entries keep their URL.
	PersistAlways PersistPolicy = "always"
	// PersistNever only reports.
	PersistNever PersistPolicy = "never"
)

// ParsePersistPolicy accepts the flag spelling of a policy.
func ParsePersistPolicy(s string) (PersistPolicy, error) {
	switch p := PersistPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PersistOnProgress, nil
	case PersistOnProgress, PersistAlways, PersistNever:
		return p, nil
	}
	return "", fmt.Errorf("unknown persist policy %q (want progress, always or never)", s)
}

func (p PersistPolicy) shouldPersist(s *Summary) bool {
	switch p {
	case PersistAlways:
		return true
	case PersistNever:
		return false
	default:
		return s.Processed > 0 || s.Skipped > 0
	}
}
