package feed

import "strings"

type Field int

const (
	FieldName Field = iota
	FieldWeapon
	FieldRarity
)

// Rule marks a drop rare when Keyword occurs in the field (case-insensitive).
// Rarity rules match the whole value.
type Rule struct {
	Field   Field
	Keyword string
}

var DefaultRules = []Rule{
	{FieldName, "★"},
	{FieldWeapon, "knife"},
	{FieldWeapon, "karambit"},
	{FieldWeapon, "bayonet"},
	{FieldWeapon, "daggers"},
	{FieldWeapon, "gloves"},
	{FieldName, "gloves"},
	{FieldName, "dragon lore"},
	{FieldName, "howl"},
	{FieldName, "fire serpent"},
	{FieldName, "medusa"},
	{FieldName, "gungnir"},
	{FieldRarity, "covert"},
	{FieldRarity, "contraband"},
	{FieldRarity, "extraordinary"},
}

type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	norm := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		norm = append(norm, Rule{Field: r.Field, Keyword: kw})
	}
	return &Classifier{rules: norm}
}

func (c *Classifier) IsRare(name, weapon, rarity string) bool {
	name = strings.ToLower(name)
	weapon = strings.ToLower(weapon)
	rarity = strings.ToLower(strings.TrimSpace(rarity))
	for _, r := range c.rules {
		switch r.Field {
		case FieldName:
			if strings.Contains(name, r.Keyword) {
				return true
			}
		case FieldWeapon:
			if strings.Contains(weapon, r.Keyword) {
				return true
			}
		case FieldRarity:
			if rarity == r.Keyword {
				return true
			}
		}
	}
	return false
}

var defaultClassifier = NewClassifier(DefaultRules)

// IsRare classifies with DefaultRules.
func IsRare(name, weapon, rarity string) bool {
	return defaultClassifier.IsRare(name, weapon, rarity)
}
