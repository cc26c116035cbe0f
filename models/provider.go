package models

// Provider is an immutable search result snapshot. Sessions reference it, never mutate it.
type Provider struct {
	ID                    string   `bson:"id" json:"id"`
	Category              string   `bson:"category" json:"category"`
	Name                  string   `bson:"name" json:"name"`
	Address               string   `bson:"address" json:"address"`
	City                  string   `bson:"city" json:"city"`
	Phone                 string   `bson:"phone" json:"phone"`
	Rating                float64  `bson:"rating" json:"rating"`           // 0-5
	ReviewCount           int      `bson:"reviewCount" json:"reviewCount"` // number of public reviews
	NextAvailable         string   `bson:"nextAvailable,omitempty" json:"nextAvailable,omitempty"`
	Specialties           []string `bson:"specialties,omitempty" json:"specialties,omitempty"`
	AvailableSlotsSummary string   `bson:"availableSlotsSummary,omitempty" json:"availableSlotsSummary,omitempty"`
	BookingURL            string   `bson:"bookingUrl,omitempty" json:"bookingUrl,omitempty"` // used by browser automation
}

// TimeSlotDay lists bookable times for one calendar date, ascending.
type TimeSlotDay struct {
	Date  string   `bson:"date" json:"date"`   // e.g. "2025-01-02"
	Slots []string `bson:"slots" json:"slots"` // e.g. ["09:00", "09:30"]
}

// SearchParams narrows a provider search. Only Category is required.
type SearchParams struct {
	Category string `json:"category" form:"category"`
	Query    string `json:"query,omitempty" form:"q"`
	Location string `json:"location,omitempty" form:"location"`
}
