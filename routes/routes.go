package routes

// DefaultUserID is the sentinel key used when a request carries no user_id.
// There is no isolation guarantee beyond this string key.
const DefaultUserID = "default"

func userOrDefault(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}
