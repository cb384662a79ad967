package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("JPEGDATA"), 0o600); err != nil {
		t.Fatal(err)
	}
	input := `[
	  {"name": "Cabin", "price_by_night": 120, "latitude": "45.5",
	   "amenities": ["wifi", "parking"],
	   "images": ["https://cdn/x.jpg", {"file": "a.jpg"}, {"caption": "nothing"}]},
	  {"name": "Loft", "price_by_night": "80,5"}
	]`
	path := filepath.Join(dir, "places.json")
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatal(err)
	}

	recs, err := readRecords(path)
	if err != nil {
		t.Fatalf("readRecords: %v", err)
	}
	if len(recs) != 2 || recs[0].Price != "120" || recs[1].Price != "80,5" || recs[0].Latitude != "45.5" {
		t.Fatalf("unexpected records: %+v", recs)
	}

	form, closeFiles, err := recs[0].toForm(dir)
	defer closeFiles()
	if err != nil {
		t.Fatalf("toForm: %v", err)
	}
	if len(form.Images) != 3 {
		t.Fatalf("expected 3 image entries, got %d", len(form.Images))
	}
	if !form.Images[0].IsURL() || form.Images[0].URL != "https://cdn/x.jpg" {
		t.Fatalf("first image must be a URL: %+v", form.Images[0])
	}
	img := form.Images[1]
	if !img.IsFile() || img.File.Filename != "a.jpg" || img.File.ContentType != "image/jpeg" {
		t.Fatalf("second image must be a file: %+v", img)
	}
	b, _ := io.ReadAll(img.File.Body)
	if string(b) != "JPEGDATA" {
		t.Fatalf("unexpected file body %q", b)
	}
	if form.Images[2].IsFile() || form.Images[2].IsURL() {
		t.Fatalf("third image must be neither file nor URL")
	}
}

func TestToForm_MissingFile(t *testing.T) {
	rec := placeRecord{Name: "Cabin", Images: []imageRecord{{File: "missing.jpg"}}}
	_, closeFiles, err := rec.toForm(t.TempDir())
	closeFiles()
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
