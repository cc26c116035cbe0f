package models

import "time"

// ProfileID is the key of the singleton profile record.
const ProfileID = "default"

// Profile is the single user's contact details used to fill bookings and forms.
type Profile struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsComplete reports whether the profile carries enough to act on the user's behalf.
func (p *Profile) IsComplete() bool {
	return p != nil && p.Name != "" && p.Email != ""
}
