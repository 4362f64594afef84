package identity

import "github.com/google/uuid"

// Identity is the resolved user behind a valid access token. It is replaced
// wholesale on every re-validation, never partially mutated.
type Identity struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	UserType    string
	AvatarRef   string
}
