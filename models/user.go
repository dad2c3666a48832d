package models

import "time"

// User is an end customer. Username is the local part of the email and keys the document.
type User struct {
	Username     string    `bson:"_id" json:"username"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Phone        string    `bson:"phone" json:"phone"`
	Governorate  string    `bson:"governorate" json:"governorate"`
	Role         string    `bson:"role" json:"role"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	ProfileImage string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	Bookings     []Booking `bson:"bookings" json:"bookings,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UserProfileUpdate struct {
	Name         *string
	PasswordHash *string
	Phone        *string
	Governorate  *string
	ProfileImage *string
}

func (u User) Clone() User {
	out := u
	if u.Bookings != nil {
		out.Bookings = append([]Booking{}, u.Bookings...)
	}
	return out
}

// SessionUser is the identity carried by a session token.
type SessionUser struct {
	Role         string `json:"role"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (s SessionUser) IsAdmin() bool { return s.Role == RoleAdmin }

// AuthResponse is returned by every sign-in flow.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      SessionUser `json:"user"`
}
