package auth

import "github.com/avykov/multiauth/models"

// checkPermissions evaluates a permission requirement against a loaded
// user. An empty requirement always passes. A multi-permission requirement
// is a logical AND; evaluation stops at the first unmet permission. The
// user's permission names are loaded with the record, so membership is an
// in-memory check.
func checkPermissions(user models.User, required []string) bool {
	for _, name := range required {
		if !user.HasPermission(name) {
			return false
		}
	}

	return true
}
