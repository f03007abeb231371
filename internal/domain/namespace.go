package domain

// Namespace returns the vector index partition of a user.
func Namespace(userID string) string {
	return "user-" + userID
}
