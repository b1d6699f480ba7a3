package mapview

import (
	"net/url"
	"testing"
)

func TestEmbedURL(t *testing.T) {
	embedder, err := New("https://www.openstreetmap.org/export/embed.html", 0.02)
	if err != nil {
		t.Fatalf("new embedder: %v", err)
	}

	raw := embedder.EmbedURL(45.815399, 15.966568)
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse embed url: %v", err)
	}
	if parsed.Host != "www.openstreetmap.org" || parsed.Path != "/export/embed.html" {
		t.Fatalf("unexpected embed location %q", raw)
	}

	query := parsed.Query()
	if got := query.Get("bbox"); got != "15.956568,45.805399,15.976568,45.825399" {
		t.Fatalf("unexpected bbox %q", got)
	}
	if got := query.Get("marker"); got != "45.815399,15.966568" {
		t.Fatalf("unexpected marker %q", got)
	}
	if got := query.Get("layer"); got != "mapnik" {
		t.Fatalf("unexpected layer %q", got)
	}
}

func TestEmbedURLClampsAtThePoles(t *testing.T) {
	embedder, err := New("https://tiles.example.com/embed", 1)
	if err != nil {
		t.Fatalf("new embedder: %v", err)
	}
	parsed, err := url.Parse(embedder.EmbedURL(89.9, 179.9))
	if err != nil {
		t.Fatalf("parse embed url: %v", err)
	}
	if got := parsed.Query().Get("bbox"); got != "179.400000,89.400000,180.000000,90.000000" {
		t.Fatalf("unexpected clamped bbox %q", got)
	}
}

func TestNewRejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/map", "::not a url"} {
		if _, err := New(raw, 0.01); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestLinkURL(t *testing.T) {
	want := "https://www.openstreetmap.org/?mlat=45.815399&mlon=15.966568#map=16/45.815399/15.966568"
	if got := LinkURL(45.815399, 15.966568); got != want {
		t.Fatalf("LinkURL() = %q, want %q", got, want)
	}
}
