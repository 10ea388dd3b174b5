package services

import "time"

type User struct {
	ID         string
	Name       string
	Email      string
	PassHash   []byte
	Profession string
	CreatedAt  time.Time
}

// Profile is the public view of a User.
type Profile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Profession string    `json:"profession,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Profession: u.Profession, CreatedAt: u.CreatedAt}
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
