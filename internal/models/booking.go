package models

import "time"

type Booking struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	PartySize  int64     `json:"party_size"`
	IsWaitlist bool      `json:"is_waitlist"`
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined session fields, populated by list and token lookups.
	SessionName      string     `json:"session_name,omitempty"`
	SessionStart     *time.Time `json:"session_start,omitempty"`
	SessionEnd       *time.Time `json:"session_end,omitempty"`
	SessionAvailable *int64     `json:"session_available_slots,omitempty"`
}

// BookingUpdate carries a partial guest update; nil fields are left untouched.
type BookingUpdate struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	PartySize *int64  `json:"party_size,omitempty"`
}

func (u BookingUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.PartySize == nil
}
