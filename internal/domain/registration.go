package domain

import "fmt"

// Registration is the pending payload held in the ephemeral store between a
// register call and a successful OTP verification. It is keyed by email and
// never acquires an identity of its own: a repeat register request for the
// same email simply overwrites it.
type Registration struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"password_hash"`
	Role         string            `json:"role"`
	Organizer    *OrganizerProfile `json:"organizer,omitempty"`
}

// Validate checks the payload is internally consistent before it is stored.
// Role is a closed set; organizer fields may only travel with the organizer role.
func (r Registration) Validate() error {
	switch r.Role {
	case RoleUser:
		if r.Organizer != nil {
			return fmt.Errorf("organizer fields not allowed for role %q: %w", r.Role, ErrBadRequest)
		}
	case RoleOrganizer:
	default:
		return fmt.Errorf("invalid role %q: %w", r.Role, ErrBadRequest)
	}
	if r.Name == "" || r.Email == "" || r.PasswordHash == "" {
		return fmt.Errorf("missing required fields: %w", ErrBadRequest)
	}
	return nil
}

// PendingOTP is the live challenge for an email. Exactly one exists per email
// at a time; issuing a new code overwrites the previous one.
type PendingOTP struct {
	Code string `json:"otp"`
}
