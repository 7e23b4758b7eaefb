// Package validation checks the format of YouTube identifiers.
package validation

import (
	"fmt"
	"regexp"
)

var (
	videoIDRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
)

// ValidateVideoID reports an error unless id is an 11-character video ID.
func ValidateVideoID(id string) error {
	if !videoIDRegex.MatchString(id) {
		return fmt.Errorf("invalid video ID format: %s", id)
	}
	return nil
}

// ValidateChannelID reports an error unless id is a "UC"-prefixed channel ID.
func ValidateChannelID(id string) error {
	if !channelIDRegex.MatchString(id) {
		return fmt.Errorf("invalid channel ID format: %s", id)
	}
	return nil
}
