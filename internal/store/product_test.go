package store

import (
	"testing"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

func TestBuildAdditiveChangesOnlyIncludesPopulatedFields(t *testing.T) {
	price := 29.99
	scraped := &model.Product{
		Title: "Canvas Sneaker",
		Price: &price,
		Colors: []string{"white"},
	}

	changes := BuildAdditiveChanges(scraped)

	if changes["title"] != "Canvas Sneaker" {
		t.Fatalf("expected title in changes, got %v", changes)
	}
	if changes["price"] != price {
		t.Fatalf("expected price in changes, got %v", changes)
	}
	if _, ok := changes["category"]; ok {
		t.Fatalf("expected category omitted since it was never scraped, got %v", changes)
	}
	if _, ok := changes["description"]; ok {
		t.Fatalf("expected description omitted since it was never scraped, got %v", changes)
	}
	if _, ok := changes["sizes"]; ok {
		t.Fatalf("expected sizes omitted since the scrape found none, got %v", changes)
	}
}

func TestBuildAdditiveChangesEmptyProductYieldsNoChanges(t *testing.T) {
	changes := BuildAdditiveChanges(&model.Product{})
	if len(changes) != 0 {
		t.Fatalf("expected no changes for an entirely empty scrape, got %v", changes)
	}
}
