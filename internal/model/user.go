package model

// User is a registered account. UserID is the login name other entities
// reference through their Writer field; ID is the store-assigned key.
type User struct {
	ID       int64  `json:"id"`
	UserID   string `json:"user_id"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// NewUser creates an unsaved User.
func NewUser(userID, password, name, email string) User {
	return User{
		UserID:   userID,
		Password: password,
		Name:     name,
		Email:    email,
	}
}

// Saved reports whether the user has been assigned an identifier.
func (u *User) Saved() bool {
	return u.ID != 0
}

// PasswordMatches checks a login attempt against the stored password.
func (u *User) PasswordMatches(password string) bool {
	return u.Password == password
}
