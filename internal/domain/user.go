package domain

import "time"

const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
)

// Address is the postal part of an organizer's contact info.
type Address struct {
	State   string `json:"state,omitempty" dynamodbav:"state,omitempty"`
	City    string `json:"city,omitempty" dynamodbav:"city,omitempty"`
	Pincode string `json:"pincode,omitempty" dynamodbav:"pincode,omitempty"`
}

type ContactInfo struct {
	Phone   string   `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Address *Address `json:"address,omitempty" dynamodbav:"address,omitempty"`
}

// OrganizerProfile carries the organizer-only registration fields.
type OrganizerProfile struct {
	OrganizationName string       `json:"organization_name,omitempty" dynamodbav:"organization_name,omitempty"`
	ContactInfo      *ContactInfo `json:"contact_info,omitempty" dynamodbav:"contact_info,omitempty"`
}

// User is a verified, durable identity. SubjectID is an opaque id generated
// at provisioning time; it is the stable claim in issued tokens and is
// decoupled from any display data. SubjectID, Email and Role never change
// after creation.
type User struct {
	SubjectID    string            `json:"id" dynamodbav:"subject_id"`
	Email        string            `json:"email" dynamodbav:"email"`
	PasswordHash string            `json:"-" dynamodbav:"password_hash"`
	Name         string            `json:"name" dynamodbav:"name"`
	Role         string            `json:"role" dynamodbav:"role"`
	IsVerified   bool              `json:"is_verified" dynamodbav:"is_verified"`
	Organizer    *OrganizerProfile `json:"organizer,omitempty" dynamodbav:"organizer,omitempty"`
	CreatedAt    time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time         `json:"updated" dynamodbav:"updated_at"`
}
