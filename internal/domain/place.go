package domain

import (
	"encoding/json"
	"fmt"
	"io"
)

// AmenityVocabulary is the fixed set offered by the place form.
var AmenityVocabulary = []string{"wifi", "parking", "piscine"}

type Place struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceByNight float64   `json:"price_by_night"`
	Location     string    `json:"location,omitempty"`
	Country      string    `json:"country,omitempty"`
	Town         string    `json:"town,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	OwnerID      int64     `json:"owner_id"`
	Amenities    []Amenity `json:"amenities,omitempty"`
	Images       []Image   `json:"images,omitempty"`
	Reviews      []Review  `json:"reviews,omitempty"`
}

// HasAmenity reports whether the place already carries an amenity with that name.
func (p Place) HasAmenity(name string) bool {
	for _, a := range p.Amenities {
		if a.Name == name {
			return true
		}
	}
	return false
}

// PlaceInput holds the scalar fields submitted on create and update.
type PlaceInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PriceByNight float64  `json:"price_by_night"`
	Location     string   `json:"location"`
	Country      string   `json:"country"`
	Town         string   `json:"town"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type Amenity struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts both "wifi" and {"id":1,"name":"wifi"}.
func (a *Amenity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amenity{Name: s}
		return nil
	}
	type plain Amenity
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("amenity: %w", err)
	}
	*a = Amenity(p)
	return nil
}

type Image struct {
	ID  int64  `json:"id,omitempty"`
	URL string `json:"url"`
}

// UnmarshalJSON accepts both a bare URL string and {"id":1,"url":"..."}.
func (i *Image) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = Image{URL: s}
		return nil
	}
	type plain Image
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	*i = Image(p)
	return nil
}

// ImageFile is a newly selected local file to upload.
type ImageFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageSource is one entry of the image list handed to the workflow.
// Exactly one of File or URL is meaningful; an entry with neither is skipped.
type ImageSource struct {
	File *ImageFile
	URL  string
}

func FileImage(f *ImageFile) ImageSource { return ImageSource{File: f} }
func URLImage(u string) ImageSource      { return ImageSource{URL: u} }

func (s ImageSource) IsFile() bool { return s.File != nil }
func (s ImageSource) IsURL() bool  { return s.File == nil && s.URL != "" }

// Key identifies the entry in batch results and logs.
func (s ImageSource) Key() string {
	switch {
	case s.IsFile():
		return "file:" + s.File.Filename
	case s.IsURL():
		return "url:" + s.URL
	}
	return "unknown"
}
