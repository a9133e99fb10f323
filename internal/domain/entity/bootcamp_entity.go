package entity

import (
	"math"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

// DefaultPhoto is shown until the owner uploads a photo.
const DefaultPhoto = "no-photo.jpg"

// Location is a geocoded GeoJSON point plus the address parts the geocoder returned.
type Location struct {
	Type             string    `json:"type"`
	Coordinates      []float64 `json:"coordinates"` // [lng, lat]
	FormattedAddress string    `json:"formattedAddress"`
	Street           string    `json:"street"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Zipcode          string    `json:"zipcode"`
	Country          string    `json:"country"`
}

// NewPoint builds a GeoJSON point.
func NewPoint(lng, lat float64) Location {
	return Location{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

type Bootcamp struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user" validate:"required"`
	Name          string    `json:"name" validate:"required,max=50"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description" validate:"required,max=500"`
	Website       string    `json:"website,omitempty" validate:"omitempty,http_url"`
	Phone         string    `json:"phone,omitempty" validate:"max=20"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Location      Location  `json:"location"`
	Careers       []string  `json:"careers" validate:"min=1,dive,career"`
	AverageRating *float64  `json:"averageRating,omitempty" validate:"omitempty,gte=1,lte=10"`
	AverageCost   float64   `json:"averageCost"`
	Photo         string    `json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`

	// Courses is only set when the list query asks to populate it.
	Courses []Course `json:"courses,omitempty"`
}

// Normalize trims input, derives the slug and fills defaults.
func (b *Bootcamp) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	b.Slug = slug.Make(b.Name)
	if b.Photo == "" {
		b.Photo = DefaultPhoto
	}
}

func (b *Bootcamp) Validate() error {
	b.Normalize()
	return validation.Struct(b)
}

// RoundAverageCost rounds a mean tuition up to the next multiple of ten.
func RoundAverageCost(mean float64) float64 {
	return math.Ceil(mean/10) * 10
}

// AverageCostOf returns the derived averageCost for a set of course tuitions.
func AverageCostOf(tuitions []float64) float64 {
	if len(tuitions) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tuitions {
		sum += t
	}
	return RoundAverageCost(sum / float64(len(tuitions)))
}

// NewBootcamp is the creation payload. Address is geocoded into Location.
type NewBootcamp struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Website       string   `json:"website"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// Bootcamp builds the entity owned by userID. Location is left to the geocoder.
func (n NewBootcamp) Bootcamp(userID string) *Bootcamp {
	return &Bootcamp{
		UserID:        userID,
		Name:          n.Name,
		Description:   n.Description,
		Website:       n.Website,
		Phone:         n.Phone,
		Email:         n.Email,
		Careers:       n.Careers,
		Photo:         DefaultPhoto,
		Housing:       n.Housing,
		JobAssistance: n.JobAssistance,
		JobGuarantee:  n.JobGuarantee,
		AcceptGi:      n.AcceptGi,
	}
}

// BootcampUp is a partial update; nil fields are left untouched.
type BootcampUp struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Website       *string   `json:"website"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Address       *string   `json:"address"`
	Careers       *[]string `json:"careers"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGi      *bool     `json:"acceptGi"`
}

// Apply copies the set fields onto b. A new Address is handled by the caller.
func (p BootcampUp) Apply(b *Bootcamp) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Website != nil {
		b.Website = *p.Website
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Careers != nil {
		b.Careers = *p.Careers
	}
	if p.Housing != nil {
		b.Housing = *p.Housing
	}
	if p.JobAssistance != nil {
		b.JobAssistance = *p.JobAssistance
	}
	if p.JobGuarantee != nil {
		b.JobGuarantee = *p.JobGuarantee
	}
	if p.AcceptGi != nil {
		b.AcceptGi = *p.AcceptGi
	}
}

// BootcampHit is a full-text search match.
type BootcampHit struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Careers     []string `json:"careers"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	AverageCost float64  `json:"averageCost"`
	Score       float64  `json:"score"`
}
