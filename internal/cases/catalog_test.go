package cases

import (
	"errors"
	"testing"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}
	cs, err := c.Get("starter")
	if err != nil {
		t.Fatalf("get starter: %v", err)
	}
	if cs.Price != 50 || len(cs.Items) == 0 {
		t.Fatalf("unexpected starter case: %+v", cs)
	}
	all := c.Cases()
	for i := 1; i < len(all); i++ {
		if all[i-1].Price > all[i].Price {
			t.Fatalf("cases not ordered by price: %+v", all)
		}
	}
	if _, err := c.Get("nope"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected case not found, got %v", err)
	}
}

func TestParseCatalogRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "cases: [\n"},
		{"no price", "cases:\n  - id: a\n    name: A\n    items:\n      - {name: x, rarity: consumer, weight: 1}\n"},
		{"zero weight", "cases:\n  - id: a\n    name: A\n    price: 5\n    items:\n      - {name: x, rarity: consumer, weight: 0}\n"},
		{"unknown rarity", "cases:\n  - id: a\n    name: A\n    price: 5\n    items:\n      - {name: x, rarity: mythic, weight: 1}\n"},
		{"no items", "cases:\n  - id: a\n    name: A\n    price: 5\n"},
		{"duplicate", "cases:\n  - id: a\n    name: A\n    price: 5\n    items:\n      - {name: x, rarity: consumer, weight: 1}\n  - id: a\n    name: B\n    price: 5\n    items:\n      - {name: x, rarity: consumer, weight: 1}\n"},
		{"bad id", "cases:\n  - id: \"Bad Id\"\n    name: A\n    price: 5\n    items:\n      - {name: x, rarity: consumer, weight: 1}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tc.yaml)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
