package model

// Role names the two identity partitions. A bearer token authenticates
// against exactly one of them, never both.
type Role string

const (
	RoleUser        Role = "user"
	RoleFacilitator Role = "facilitator"
)

// Identity is the resolved result of authorizing a bearer token. It is a
// tagged value: Role says which partition the ID belongs to, so callers
// never have to probe for the presence of user-only or facilitator-only
// fields.
type Identity struct {
	Role  Role
	ID    uint64
	Name  string
	Email string
}

// DisplayName returns the human-facing name carried in notification
// payloads and login responses.
func (i Identity) DisplayName() string { return i.Name }
