package odm

import (
	"fmt"
	"strings"
)

// ValidateFieldName checks that a document field name can be stored and
// addressed by filters. Names may not be empty, start with "$", or contain
// "." (the path separator) or NUL.
func ValidateFieldName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("field name is empty")
	case strings.HasPrefix(name, "$"):
		return fmt.Errorf("field name %q starts with '$', which is reserved for operators", name)
	case strings.Contains(name, "."):
		return fmt.Errorf("field name %q contains '.', which is reserved for paths", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("field name %q contains NUL", name)
	}
	return nil
}

// ValidateCollectionName checks that a collection name is usable. Names may
// not be empty, contain "$" or NUL, or use the "system." prefix.
func ValidateCollectionName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("collection name is empty")
	case strings.Contains(name, "$"):
		return fmt.Errorf("collection name %q contains '$'", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("collection name %q contains NUL", name)
	case strings.HasPrefix(name, "system."):
		return fmt.Errorf("collection name %q uses the reserved \"system.\" prefix", name)
	}
	return nil
}
