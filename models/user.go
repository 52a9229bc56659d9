package models

import "fmt"

// User is one account holder. Users are read-only reference data for the
// reconciliation engine; nothing here may ever write to this collection.
type User struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	Email     string `json:"email" bson:"email"`
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Password  string `json:"-" bson:"password,omitempty"`
	CreatedBy string `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
}

func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: user without id", ErrMalformedRecord)
	}
	return nil
}
