package models

import "time"

const (
	RoleUser     = "user"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Work is a portfolio entry embedded in a provider document.
type Work struct {
	ID          string        `bson:"id" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Images      []string      `bson:"images" json:"images"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	Comments    []WorkComment `bson:"comments" json:"comments"`
	Ratings     []int         `bson:"ratings" json:"ratings"`
}

type WorkComment struct {
	ClientEmail string    `bson:"clientEmail" json:"clientEmail"`
	ClientName  string    `bson:"clientName" json:"clientName"`
	Text        string    `bson:"text" json:"text"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Review is a client rating embedded in a provider document. It is never stored on its own.
type Review struct {
	ID          string     `bson:"id" json:"id"`
	ClientEmail string     `bson:"clientEmail" json:"clientEmail"`
	ClientName  string     `bson:"clientName" json:"clientName"`
	Rating      int        `bson:"rating" json:"rating"`
	Review      string     `bson:"review" json:"review"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Provider is a service professional. The email is the document key.
type Provider struct {
	Email           string   `bson:"_id" json:"email"`
	Name            string   `bson:"name" json:"name"`
	Role            string   `bson:"role" json:"role"`
	PasswordHash    string   `bson:"passwordHash" json:"-"`
	NationalID      string   `bson:"nationalId" json:"nationalId,omitempty"`
	Phone           string   `bson:"phone" json:"phone"`
	Profession      string   `bson:"profession" json:"profession"`
	Category        string   `bson:"category" json:"category"`
	Governorate     string   `bson:"governorate" json:"governorate"`
	Address         string   `bson:"address" json:"address"`
	Bio             string   `bson:"bio" json:"bio"`
	ProfileImage    string   `bson:"profileImage" json:"profileImage,omitempty"`
	IDFrontImage    string   `bson:"idFrontImage" json:"idFrontImage,omitempty"`
	IDBackImage     string   `bson:"idBackImage" json:"idBackImage,omitempty"`
	SubscriptionFee float64  `bson:"subscriptionFee" json:"subscriptionFee"`
	AllowContact    bool     `bson:"allowContact" json:"allowContact"`
	WorkingAreas    []string `bson:"workingAreas" json:"workingAreas"`
	FCMToken        string   `bson:"fcmToken,omitempty" json:"-"`

	Works    []Work    `bson:"works" json:"works"`
	Reviews  []Review  `bson:"reviews" json:"reviews"`
	Bookings []Booking `bson:"bookings" json:"bookings,omitempty"`

	WorksCount    int     `bson:"worksCount" json:"worksCount"`
	RatingsCount  int     `bson:"ratingsCount" json:"ratingsCount"`
	RatingsTotal  int     `bson:"ratingsTotal" json:"ratingsTotal"`
	AverageRating float64 `bson:"averageRating" json:"averageRating"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProviderProfileUpdate carries the settings fields a provider may change. Nil fields are left untouched.
type ProviderProfileUpdate struct {
	Name            *string
	PasswordHash    *string
	NationalID      *string
	Phone           *string
	Profession      *string
	Category        *string
	Governorate     *string
	Address         *string
	Bio             *string
	ProfileImage    *string
	SubscriptionFee *float64
	AllowContact    *bool
	WorkingAreas    *[]string
}

// ProviderSummary is the public listing view of a provider.
type ProviderSummary struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Profession    string  `json:"profession"`
	Category      string  `json:"category"`
	Governorate   string  `json:"governorate"`
	Bio           string  `json:"bio"`
	ProfileImage  string  `json:"profileImage,omitempty"`
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int     `json:"ratingsCount"`
	AllowChat     bool    `json:"allowChat"`
}

// Categories whose providers can be contacted directly through chat.
var chatCategories = map[string]bool{
	"خدمات صحية": true,
	"خدمات فنية": true,
}

// Summary derives the listing view, recomputing the rating from the embedded reviews.
func (p *Provider) Summary() ProviderSummary {
	agg := ComputeRatings(p.Reviews)
	return ProviderSummary{
		Email:         p.Email,
		Name:          p.Name,
		Profession:    p.Profession,
		Category:      p.Category,
		Governorate:   p.Governorate,
		Bio:           p.Bio,
		ProfileImage:  p.ProfileImage,
		AverageRating: RoundRating(agg.Average),
		RatingsCount:  agg.Count,
		AllowChat:     chatCategories[p.Category],
	}
}

// Public strips the fields only the provider or an admin may see.
func (p Provider) Public() Provider {
	out := p.Clone()
	out.NationalID = ""
	out.IDFrontImage = ""
	out.IDBackImage = ""
	out.Bookings = nil
	return out
}

// Clone returns a deep copy so callers never share embedded slices with a store.
func (p Provider) Clone() Provider {
	out := p
	out.WorkingAreas = append([]string(nil), p.WorkingAreas...)
	if p.Works != nil {
		out.Works = make([]Work, len(p.Works))
		for i, w := range p.Works {
			out.Works[i] = w.Clone()
		}
	}
	if p.Reviews != nil {
		out.Reviews = make([]Review, len(p.Reviews))
		for i, r := range p.Reviews {
			out.Reviews[i] = r
			if r.UpdatedAt != nil {
				t := *r.UpdatedAt
				out.Reviews[i].UpdatedAt = &t
			}
		}
	}
	if p.Bookings != nil {
		out.Bookings = append([]Booking{}, p.Bookings...)
	}
	return out
}

func (w Work) Clone() Work {
	out := w
	out.Images = append([]string(nil), w.Images...)
	out.Comments = append([]WorkComment(nil), w.Comments...)
	out.Ratings = append([]int(nil), w.Ratings...)
	return out
}
