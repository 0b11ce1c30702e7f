package cases

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Item struct {
	Name   string `yaml:"name" json:"name"`
	Weapon string `yaml:"weapon" json:"weapon"`
	Rarity string `yaml:"rarity" json:"rarity"`
	Weight int    `yaml:"weight" json:"weight"`
}

type Case struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Price int64  `yaml:"price" json:"price"`
	Items []Item `yaml:"items" json:"items"`

	totalWeight int
}

type Catalog struct {
	byID  map[string]*Case
	order []string
}

type catalogFile struct {
	Cases []Case `yaml:"cases"`
}

var caseIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// LoadCatalog reads path, or the embedded catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c := &Catalog{byID: make(map[string]*Case, len(f.Cases))}
	for i := range f.Cases {
		cs := f.Cases[i]
		if !caseIDPattern.MatchString(cs.ID) {
			return nil, fmt.Errorf("%w: bad case id %q", ErrInvalidCatalog, cs.ID)
		}
		if _, dup := c.byID[cs.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate case %q", ErrInvalidCatalog, cs.ID)
		}
		if cs.Price <= 0 {
			return nil, fmt.Errorf("%w: case %q needs a positive price", ErrInvalidCatalog, cs.ID)
		}
		for _, it := range cs.Items {
			if it.Weight <= 0 || it.Name == "" {
				return nil, fmt.Errorf("%w: case %q has an item without name or weight", ErrInvalidCatalog, cs.ID)
			}
			if RarityRank(it.Rarity) == 0 {
				return nil, fmt.Errorf("%w: case %q item %q has unknown rarity %q", ErrInvalidCatalog, cs.ID, it.Name, it.Rarity)
			}
			cs.totalWeight += it.Weight
		}
		if cs.totalWeight == 0 {
			return nil, fmt.Errorf("%w: case %q", ErrEmptyCase, cs.ID)
		}
		c.byID[cs.ID] = &cs
		c.order = append(c.order, cs.ID)
	}
	return c, nil
}

func (c *Catalog) Get(id string) (*Case, error) {
	cs, ok := c.byID[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return cs, nil
}

// Cases returns every case ordered by price. Ties keep file order.
func (c *Catalog) Cases() []Case {
	out := make([]Case, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

var rarityRanks = map[string]int{
	"consumer":      1,
	"industrial":    2,
	"milspec":       3,
	"restricted":    4,
	"classified":    5,
	"covert":        6,
	"contraband":    7,
	"extraordinary": 7,
}

// RarityRank returns 0 for unknown rarities.
func RarityRank(r string) int {
	return rarityRanks[r]
}
