package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RawVehicle holds one element of the listings payload exactly as the backend
// sent it. Field types are tolerant so that one badly typed field never makes
// the whole record undecodable.
type RawVehicle struct {
	ID           FlexString  `json:"id"`
	Title        FlexString  `json:"title"`
	Brand        RawBrand    `json:"brand"`
	Year         FlexString  `json:"year"`
	OfferPrice   FlexString  `json:"offer_price"`
	Mileage      FlexString  `json:"mileage"`
	Transmission FlexString  `json:"transmission"`
	Condition    FlexString  `json:"condition"`
	ThumbImage   FlexString  `json:"thumb_image"`
	Description  FlexString  `json:"description"`
	FuelType     FlexString  `json:"fuel_type"`
	Location     FlexString  `json:"location"`
	Address      FlexString  `json:"address"`
	CountryID    OptionalInt `json:"country_id"`
	CityID       OptionalInt `json:"city_id"`
	Features     FlexStrings `json:"features"`
	CreatedAt    FlexString  `json:"created_at"`
	UpdatedAt    FlexString  `json:"updated_at"`
	Views        FlexString  `json:"views"`
	IsPromoted   FlexBool    `json:"is_promoted"`
	Seller       RawSeller   `json:"seller"`
}

// RawBrand accepts either {"name": "..."} or a bare string.
type RawBrand struct {
	Name FlexString `json:"name"`
}

func (b *RawBrand) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '{':
		type alias RawBrand
		var a alias
		if err := json.Unmarshal(data, &a); err != nil {
			return nil
		}
		*b = RawBrand(a)
	default:
		return b.Name.UnmarshalJSON(data)
	}
	return nil
}

// RawSeller is the embedded seller summary. Anything that is not an object is ignored.
type RawSeller struct {
	ID           FlexString `json:"id"`
	Name         FlexString `json:"name"`
	Phone        FlexString `json:"phone"`
	Avatar       FlexString `json:"avatar"`
	Rating       FlexString `json:"rating"`
	ReviewCount  FlexString `json:"review_count"`
	IsVerified   FlexBool   `json:"is_verified"`
	Location     FlexString `json:"location"`
	MemberSince  FlexString `json:"member_since"`
	ResponseTime FlexString `json:"response_time"`

	Present bool `json:"-"`
}

func (s *RawSeller) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	type alias RawSeller
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return nil
	}
	*s = RawSeller(a)
	s.Present = true
	return nil
}

// FlexString decodes JSON strings, numbers and booleans into their text form.
// Objects, arrays and null decode to the empty string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(s)
	case '{', '[', 'n':
		*f = ""
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// Trimmed returns the value without surrounding whitespace.
func (f FlexString) Trimmed() string { return strings.TrimSpace(string(f)) }

// OptionalInt is a nullable integer that also accepts numeric strings.
type OptionalInt struct {
	Value int
	Valid bool
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(data)
	text := s.Trimmed()
	if text == "" {
		*o = OptionalInt{}
		return nil
	}
	if n, err := strconv.Atoi(text); err == nil {
		*o = OptionalInt{Value: n, Valid: true}
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == float64(int(f)) {
		*o = OptionalInt{Value: int(f), Valid: true}
		return nil
	}
	*o = OptionalInt{}
	return nil
}

// Ptr returns nil when the value was absent.
func (o OptionalInt) Ptr() *int {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// FlexBool accepts true/false, 1/0 and their string forms.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(data)
	switch strings.ToLower(s.Trimmed()) {
	case "true", "1", "yes", "on":
		*b = true
	default:
		*b = false
	}
	return nil
}

// FlexStrings decodes an array of scalars; any other shape yields an empty slice.
type FlexStrings []string

func (fs *FlexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*fs = nil
		return nil
	}
	var items []FlexString
	if err := json.Unmarshal(data, &items); err != nil {
		*fs = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if v := it.Trimmed(); v != "" {
			out = append(out, v)
		}
	}
	*fs = out
	return nil
}

// ListingsPage is one decoded page of the listings endpoint.
type ListingsPage struct {
	Items       []*RawVehicle
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}
