package model

// Credentials is a username/password pair used for directory authentication.
type Credentials struct {
	Username string
	Password string
}
