package models

import "time"

// Role is the access level carried in a user's token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is one postal address of a user.
type Address struct {
	Country  string `json:"country" firestore:"country"`
	State    string `json:"state" firestore:"state"`
	City     string `json:"city" firestore:"city"`
	Landmark string `json:"landmark" firestore:"landmark"`
	Pincode  string `json:"pincode,omitempty" firestore:"pincode,omitempty"`
	HouseNo  string `json:"house_no" firestore:"houseNo"`
	Address  string `json:"address" firestore:"address"`
}

// User represents a registered account. Email is stored lower-cased and is
// unique across the users collection.
type User struct {
	ID           string    `json:"id" firestore:"-"` // Document ID, auto-generated
	Name         string    `json:"name" firestore:"name"`
	Email        string    `json:"email" firestore:"email"`
	Mobile       string    `json:"mobile,omitempty" firestore:"mobile,omitempty"`
	PasswordHash string    `json:"-" firestore:"passwordHash"`
	Role         Role      `json:"role" firestore:"role"`
	Addresses    []Address `json:"address" firestore:"addresses"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary returns the public subset of the user shown next to contributions.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the denormalised owner snapshot embedded in contribution reads.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
