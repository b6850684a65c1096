package models

import "fmt"

type Role string

const (
	RoleViewer     Role = "viewer"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// ParseRole validates a role name typed by an admin.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleSupervisor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// Operator is a staff member talking to the bot. The chat id is the session identity.
type Operator struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(20);default:'viewer'" json:"role"`
}

func (Operator) TableName() string {
	return "operators"
}

// IsAdmin reports whether the operator manages roles and the registry.
func (o *Operator) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// CanEdit reports whether the operator may write attendance overrides.
func (o *Operator) CanEdit() bool {
	return o.Role == RoleAdmin || o.Role == RoleSupervisor
}

// Identity is the string stored as quem_adicionou on every write.
func (o *Operator) Identity() string {
	name := o.FirstName
	if o.LastName != "" {
		name += " " + o.LastName
	}
	if o.Username != "" {
		return fmt.Sprintf("%s (@%s)", name, o.Username)
	}
	return name
}
