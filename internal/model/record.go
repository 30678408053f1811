package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User mirrors the host application's Users collection, limited to the
// fields the tooling reads or writes.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserName   string             `bson:"userName" json:"userName"`
	FirstName  string             `bson:"firstName" json:"firstName"`
	LastName   string             `bson:"lastName" json:"lastName"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	NPI        string             `bson:"npi,omitempty" json:"npi,omitempty"`
	ProviderID string             `bson:"providerId,omitempty" json:"providerId,omitempty"`
	Role       string             `bson:"role" json:"role"`
	Active     bool               `bson:"active" json:"active"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Patient mirrors the host application's Patients collection.
type Patient struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName   string             `bson:"firstName" json:"firstName"`
	LastName    string             `bson:"lastName" json:"lastName"`
	DateOfBirth time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender      string             `bson:"gender" json:"gender"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     Address            `bson:"address" json:"address"`
	MRN         string             `bson:"mrn" json:"mrn"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Address is an embedded mailing address.
type Address struct {
	Street string `bson:"street" json:"street"`
	City   string `bson:"city" json:"city"`
	State  string `bson:"state" json:"state"`
	Zip    string `bson:"zip" json:"zip"`
}

// AvailabilityBlock is one bookable window within a day.
type AvailabilityBlock struct {
	Start string `bson:"start" json:"start"` // "09:00"
	End   string `bson:"end" json:"end"`     // "17:00"
}

// StaffAvailability mirrors the host application's StaffAvailability
// collection: one document per provider per weekday.
type StaffAvailability struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	ProviderID string              `bson:"providerId" json:"providerId"`
	Weekday    string              `bson:"weekday" json:"weekday"`
	Blocks     []AvailabilityBlock `bson:"blocks" json:"blocks"`
	Location   string              `bson:"location,omitempty" json:"location,omitempty"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}
