package domain

import (
	"fmt"
	"regexp"
)

const MaxFieldnameLength = 32

var fieldnamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateFieldname checks that name starts with a letter and holds only
// alphanumerics and underscores.
func ValidateFieldname(name string) error {
	if len(name) > MaxFieldnameLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidFieldname, name, MaxFieldnameLength)
	}
	if !fieldnamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q must start with a letter and contain only alphanumerics and underscore", ErrInvalidFieldname, name)
	}
	return nil
}
