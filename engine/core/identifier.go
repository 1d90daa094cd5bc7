package core

import "github.com/google/uuid"

// IdentifierNew returns a unique name for resources that do not have a
// natural one, such as procedurally generated textures.
func IdentifierNew() string {
	return uuid.New().String()
}
