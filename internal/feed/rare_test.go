package feed

import "testing"

func TestIsRareTable(t *testing.T) {
	cases := []struct {
		name, weapon, rarity string
		want                 bool
	}{
		{"★ Karambit | Fade", "Karambit", "extraordinary", true},
		{"Bayonet | Slaughter", "Bayonet", "", true},
		{"Butterfly Knife | Doppler", "Butterfly Knife", "", true},
		{"Sport Gloves | Vice", "", "restricted", true},
		{"AWP | Dragon Lore", "AWP", "classified", true},
		{"M4A4 | Howl", "M4A4", "", true},
		{"AK-47 | Redline", "AK-47", "covert", true},
		{"AK-47 | Redline", "AK-47", "classified", false},
		{"P250 | Sand Dune", "P250", "consumer", false},
		{"Glock-18 | Fade", "Glock-18", "restricted", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		if got := IsRare(tc.name, tc.weapon, tc.rarity); got != tc.want {
			t.Fatalf("IsRare(%q, %q, %q) = %v, want %v", tc.name, tc.weapon, tc.rarity, got, tc.want)
		}
	}
}

func TestClassifierCustomRules(t *testing.T) {
	c := NewClassifier([]Rule{{FieldName, "  Asiimov "}, {FieldWeapon, ""}})
	if !c.IsRare("AWP | ASIIMOV", "AWP", "covert") {
		t.Fatal("expected keyword match regardless of case")
	}
	if c.IsRare("AK-47 | Redline", "AK-47", "covert") {
		t.Fatal("rarity rules must not apply when not configured")
	}
}
