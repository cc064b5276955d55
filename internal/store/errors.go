package store

import "errors"

// ErrDuplicateToken is returned by the token repository when a freshly
// generated token value collides with an existing row.
var ErrDuplicateToken = errors.New("token value already exists")
