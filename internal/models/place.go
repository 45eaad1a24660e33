package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MaxPlaceImages is the number of images a place may carry.
const MaxPlaceImages = 3

// PlaceDB represents a place (listing) row in the database
type PlaceDB struct {
	PlaceID     uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Country     string         `json:"country" db:"country"`
	City        string         `json:"city" db:"city"`
	County      string         `json:"county" db:"county"`
	District    string         `json:"district" db:"district"`
	ImagePaths  pq.StringArray `json:"image_paths" db:"image_paths"`
	Area        *float64       `json:"area" db:"area"`
	Rooms       *int           `json:"rooms" db:"rooms"`
	Beds        *int           `json:"beds" db:"beds"`
	WC          *int           `json:"wc" db:"wc"`
	Price       float64        `json:"price" db:"price"`
	Pets        *bool          `json:"pets" db:"pets"`
	Available   *bool          `json:"available" db:"available"`
	Category    string         `json:"category" db:"category"`
	Amenities   pq.StringArray `json:"amenities" db:"amenities"`
	Features    pq.StringArray `json:"features" db:"features"`
	Creator     uuid.UUID      `json:"creator" db:"creator"` // Owning user
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// PlaceInput is the full set of writable place fields, used by create and full-row update.
type PlaceInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	County      string   `json:"county"`
	District    string   `json:"district"`
	Area        *float64 `json:"area"`
	Rooms       *int     `json:"rooms"`
	Beds        *int     `json:"beds"`
	WC          *int     `json:"wc"`
	Price       float64  `json:"price"`
	Pets        *bool    `json:"pets"`
	Available   *bool    `json:"available"`
	Category    string   `json:"category"`
	Amenities   []string `json:"amenities"`
	Features    []string `json:"features"`
}

// PlacePatch carries a partial place update. Nil fields are left untouched.
type PlacePatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Country     *string   `json:"country"`
	City        *string   `json:"city"`
	County      *string   `json:"county"`
	District    *string   `json:"district"`
	Area        *float64  `json:"area"`
	Rooms       *int      `json:"rooms"`
	Beds        *int      `json:"beds"`
	WC          *int      `json:"wc"`
	Price       *float64  `json:"price"`
	Pets        *bool     `json:"pets"`
	Available   *bool     `json:"available"`
	Category    *string   `json:"category"`
	Amenities   *[]string `json:"amenities"`
	Features    *[]string `json:"features"`
}

// Range is an open numeric interval; either bound may be omitted.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// StringList decodes from either a single JSON string or an array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
		} else {
			*l = StringList{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// PlaceFilter lists the optional predicates of a place search.
type PlaceFilter struct {
	Category  string     `json:"category,omitempty"`
	Country   StringList `json:"country,omitempty"`
	City      StringList `json:"city,omitempty"`
	County    StringList `json:"county,omitempty"`
	District  StringList `json:"district,omitempty"`
	Area      *Range     `json:"area,omitempty"`
	Price     *Range     `json:"price,omitempty"`
	Rooms     *int       `json:"rooms,omitempty"`
	Beds      *int       `json:"beds,omitempty"`
	WC        *int       `json:"wc,omitempty"`
	Pets      *bool      `json:"pets,omitempty"`
	Available *bool      `json:"available,omitempty"`
	Amenities []string   `json:"amenities,omitempty"`
	Features  []string   `json:"features,omitempty"`
	Limit     uint       `json:"limit,omitempty"`
	Offset    uint       `json:"offset,omitempty"`
}
