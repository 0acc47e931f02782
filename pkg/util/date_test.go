package util

import (
	"testing"
	"time"
)

func TestParseDatePlain(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(DateLayout) != "2024-10-10" {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	got, ok := ParseDate("2024-10-10T15:04:05Z")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected truncation to date, got %v", got)
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 10, 10, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	got := DateOnly(in)
	if got.Format(DateLayout) != "2024-10-11" {
		t.Fatalf("expected UTC date, got %v", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location")
	}
}
