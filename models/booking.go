package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that occupy a slot.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingApproved}

// IsActive reports whether a booking in this status blocks its slot.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingApproved
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Booking is stored twice: in the provider's bookings array and mirrored in the client's.
type Booking struct {
	ID            string        `bson:"id" json:"id"`
	ProviderEmail string        `bson:"providerEmail" json:"providerEmail"`
	ProviderName  string        `bson:"providerName" json:"providerName"`
	Profession    string        `bson:"profession" json:"profession"`
	ClientEmail   string        `bson:"clientEmail" json:"clientEmail"`
	ClientName    string        `bson:"clientName" json:"clientName"`
	BookingDate   string        `bson:"bookingDate" json:"bookingDate"` // YYYY-MM-DD
	BookingTime   string        `bson:"bookingTime" json:"bookingTime"` // one of BookingTimeLabels
	Note          string        `bson:"note" json:"note"`
	Status        BookingStatus `bson:"status" json:"status"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SameSlot reports whether b occupies the given provider/date/time tuple while active.
func (b Booking) SameSlot(date, timeLabel string) bool {
	return b.BookingDate == date && b.BookingTime == timeLabel && b.Status.IsActive()
}

// BookingTimeLabels are the bookable hours offered to clients.
var BookingTimeLabels = []string{
	"9:00 صباحاً",
	"10:00 صباحاً",
	"11:00 صباحاً",
	"12:00 ظهراً",
	"1:00 مساءً",
	"2:00 مساءً",
	"3:00 مساءً",
	"4:00 مساءً",
	"5:00 مساءً",
	"6:00 مساءً",
	"7:00 مساءً",
}

func IsBookingTimeLabel(label string) bool {
	for _, l := range BookingTimeLabels {
		if l == label {
			return true
		}
	}
	return false
}
