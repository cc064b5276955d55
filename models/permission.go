package models

// Permission is a named capability attached to users many-to-many
// (e.g. "login"). Accounts missing the "login" permission can never
// authenticate, even with correct credentials.
type Permission struct {
	// PermissionID is the internal unique identifier of the permission.
	PermissionID int64 `json:"-"`

	// Name is the unique permission name checked by the authorization layer.
	Name string `json:"name"`

	// Description is an optional human-readable explanation.
	Description string `json:"description"`
}

// TableName returns the name of the database table
// associated with the Permission model.
func (p Permission) TableName() string {
	return "permissions"
}
