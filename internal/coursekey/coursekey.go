// Package coursekey parses edX-style course identifiers.
//
// Two formats are recognized: the current locator form
// "course-v1:Org+Course+Run" and the legacy slash form "Org/Course/Run".
package coursekey

import (
	"fmt"
	"strings"
)

const locatorPrefix = "course-v1:"

// Key is a parsed course identifier.
type Key struct {
	Org    string
	Course string
	Run    string
}

// Parse splits a course id into its org, course and run segments.
func Parse(courseID string) (*Key, error) {
	if courseID == "" {
		return nil, fmt.Errorf("empty course id")
	}

	var parts []string
	if rest, ok := strings.CutPrefix(courseID, locatorPrefix); ok {
		parts = strings.Split(rest, "+")
	} else if strings.Contains(courseID, "/") {
		parts = strings.Split(courseID, "/")
	} else {
		return nil, fmt.Errorf("invalid course id: %s", courseID)
	}

	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid course id: %s", courseID)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid course id: %s", courseID)
		}
	}

	return &Key{Org: parts[0], Course: parts[1], Run: parts[2]}, nil
}

// Org returns the organization segment of a course id.
func Org(courseID string) (string, error) {
	key, err := Parse(courseID)
	if err != nil {
		return "", err
	}
	return key.Org, nil
}
