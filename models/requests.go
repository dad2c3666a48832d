package models

// UserRegistration is the sign-up payload for end customers.
type UserRegistration struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Phone        string `json:"phone" validate:"required,phone"`
	Governorate  string `json:"governorate" validate:"required"`
	ProfileImage string `json:"profileImage"`
}

// UserSettings carries optional changes. A nil field is left as is.
type UserSettings struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
	Phone        *string `json:"phone" validate:"omitempty,phone"`
	Governorate  *string `json:"governorate" validate:"omitempty,min=1"`
	ProfileImage *string `json:"profileImage"`
}

type ProviderRegistration struct {
	Name            string   `json:"name" validate:"required,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	NationalID      string   `json:"nationalId" validate:"required"`
	Phone           string   `json:"phone" validate:"required,phone"`
	Address         string   `json:"address" validate:"required"`
	Category        string   `json:"category" validate:"required"`
	Profession      string   `json:"profession" validate:"required"`
	Governorate     string   `json:"governorate" validate:"required"`
	Bio             string   `json:"bio" validate:"max=2000"`
	SubscriptionFee float64  `json:"subscriptionFee" validate:"gte=0"`
	WorkingAreas    []string `json:"workingAreas"`
	ProfileImage    string   `json:"profileImage"`
	IDFrontImage    string   `json:"idFrontImage"`
	IDBackImage     string   `json:"idBackImage"`
}

type ProviderSettings struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Password        *string   `json:"password" validate:"omitempty,min=6"`
	NationalID      *string   `json:"nationalId" validate:"omitempty,min=1"`
	Phone           *string   `json:"phone" validate:"omitempty,phone"`
	Profession      *string   `json:"profession" validate:"omitempty,min=1"`
	Category        *string   `json:"category" validate:"omitempty,min=1"`
	Governorate     *string   `json:"governorate" validate:"omitempty,min=1"`
	Address         *string   `json:"address" validate:"omitempty,min=1"`
	Bio             *string   `json:"bio" validate:"omitempty,max=2000"`
	ProfileImage    *string   `json:"profileImage"`
	SubscriptionFee *float64  `json:"subscriptionFee" validate:"omitempty,gte=0"`
	AllowContact    *bool     `json:"allowContact"`
	WorkingAreas    *[]string `json:"workingAreas"`
}

// ReviewInput is validated before the provider document is read.
type ReviewInput struct {
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Review string `json:"review" validate:"max=2000"`
}

type WorkInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	Images      []string `json:"images" validate:"max=10"`
}

type BookingRequest struct {
	ProviderEmail string `json:"providerEmail" validate:"required,email"`
	BookingDate   string `json:"bookingDate" validate:"required,isodate"`
	BookingTime   string `json:"bookingTime" validate:"required"`
	Note          string `json:"note" validate:"max=1000"`
}

type BookingStatusRequest struct {
	Status BookingStatus `json:"status" validate:"required,oneof=approved completed cancelled"`
}

type FeedbackInput struct {
	Type        FeedbackType `json:"type" validate:"required,oneof=complaint suggestion"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description" validate:"required,min=10,max=4000"`
}

type FeedbackResponseInput struct {
	Response string `json:"response" validate:"required"`
}

type FeedbackStatusInput struct {
	Status string `json:"status" validate:"required"`
}

type MessageInput struct {
	ReceiverID string `json:"receiverId" validate:"required,email"`
	Text       string `json:"text" validate:"required,max=4000"`
}

type FCMTokenInput struct {
	Token string `json:"token" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
