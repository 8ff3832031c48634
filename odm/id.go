package odm

import "github.com/google/uuid"

// NewID returns a new random identity suitable for string `odm:"id"` fields.
func NewID() string {
	return uuid.NewString()
}
