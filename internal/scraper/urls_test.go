package scraper

import "testing"

func TestResolveAgainstRootRelative(t *testing.T) {
	got := resolveAgainst("https://shop.example.com/listing?page=2", "/p/shoe-1")
	want := "https://shop.example.com/p/shoe-1"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveAgainstAlreadyAbsolute(t *testing.T) {
	got := resolveAgainst("https://shop.example.com/listing", "https://cdn.example.com/img.jpg")
	want := "https://cdn.example.com/img.jpg"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveAgainstEmptyHrefReturnsEmpty(t *testing.T) {
	if got := resolveAgainst("https://shop.example.com/listing", ""); got != "" {
		t.Fatalf("expected empty string passthrough, got %q", got)
	}
}

func TestPageParamFromURL(t *testing.T) {
	cases := map[string]int{
		"https://shop.example.com/listing?page=3": 3,
		"https://shop.example.com/listing":         0,
		"https://shop.example.com/listing?page=abc": 0,
	}
	for in, want := range cases {
		if got := pageParamFromURL(in); got != want {
			t.Fatalf("pageParamFromURL(%q) = %d, want %d", in, got, want)
		}
	}
}
