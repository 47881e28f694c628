package users

import "time"

// User is a stored directory record. The JSON shape mirrors the persisted
// document: {_id, name, phone, email, __v}.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Version   int       `json:"__v"`
	CreatedAt time.Time `json:"-"`
}

// Candidate is a record as submitted by a client, before it has an identifier.
type Candidate struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
