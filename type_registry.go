package hackload

var userRegistry = make(map[string]User)

func RegisterUser(name string, u User) {
	userRegistry[name] = u
}

func UserFromString(name string) User {
	return userRegistry[name]
}

// RegisteredUsers copy of registered user prototypes by class name
func RegisteredUsers() map[string]User {
	users := make(map[string]User, len(userRegistry))
	for k, v := range userRegistry {
		users[k] = v
	}
	return users
}
