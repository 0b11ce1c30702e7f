package cases

// Rand is the subset of *math/rand/v2.Rand a roll needs.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type Drop struct {
	Item Item
	Wear float64
}

// Roll picks an item with probability weight/totalWeight and a wear value
// uniform in [0,1). The result depends only on rng.
func Roll(c *Case, rng Rand) (Drop, error) {
	total := c.totalWeight
	if total == 0 {
		for _, it := range c.Items {
			total += it.Weight
		}
	}
	if total <= 0 {
		return Drop{}, ErrEmptyCase
	}
	n := rng.IntN(total)
	for _, it := range c.Items {
		if n < it.Weight {
			return Drop{Item: it, Wear: rng.Float64()}, nil
		}
		n -= it.Weight
	}
	return Drop{}, ErrEmptyCase
}
