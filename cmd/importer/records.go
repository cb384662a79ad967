package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
)

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// imageRecord is either "https://..." or {"file": "path"} / {"url": "..."}.
type imageRecord struct {
	URL  string `json:"url"`
	File string `json:"file"`
}

func (r *imageRecord) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.URL)
	}
	type plain imageRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = imageRecord(p)
	return nil
}

type placeRecord struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       flexString    `json:"price_by_night"`
	Location    string        `json:"location"`
	Country     string        `json:"country"`
	Town        string        `json:"town"`
	Latitude    flexString    `json:"latitude"`
	Longitude   flexString    `json:"longitude"`
	Amenities   []string      `json:"amenities"`
	Images      []imageRecord `json:"images"`
}

func readRecords(path string) ([]placeRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []placeRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// toForm opens the referenced image files relative to baseDir. The returned
// func closes them.
func (r placeRecord) toForm(baseDir string) (app.PlaceForm, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	f := app.PlaceForm{
		Name:        r.Name,
		Description: r.Description,
		Price:       string(r.Price),
		Location:    r.Location,
		Country:     r.Country,
		Town:        r.Town,
		Latitude:    string(r.Latitude),
		Longitude:   string(r.Longitude),
		Amenities:   r.Amenities,
	}
	for i, img := range r.Images {
		switch {
		case img.File != "":
			p := img.File
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			fh, err := os.Open(p)
			if err != nil {
				closeAll()
				return app.PlaceForm{}, func() {}, fmt.Errorf("image %d: %w", i, err)
			}
			files = append(files, fh)
			f.Images = append(f.Images, domain.FileImage(&domain.ImageFile{
				Filename:    filepath.Base(p),
				ContentType: contentType(p),
				Body:        fh,
			}))
		case img.URL != "":
			f.Images = append(f.Images, domain.URLImage(img.URL))
		default:
			f.Images = append(f.Images, domain.ImageSource{})
		}
	}
	return f, closeAll, nil
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}

var errNoToken = errors.New("no session token; run with -email/-password then -code first")
