package coinafrique

import "context"

// Result is the outcome of one strategy: a value, or a signal to try the
// next strategy.
type Result struct {
	Value string
	Found bool
}

// Found wraps a scraped value. Empty values count as a miss.
func Found(v string) Result {
	return Result{Value: v, Found: v != ""}
}

// TryNext tells the chain to move on to the next tier.
var TryNext = Result{}

// Tier is one ranked strategy of a field extractor.
type Tier struct {
	Name string
	Try  func(ctx context.Context) Result
}

// Chain is an ordered list of tiers. The first tier that finds a value wins;
// later tiers are never consulted and results are never merged.
type Chain []Tier

// Run tries each tier in order. It returns the value, the name of the tier
// that produced it, and whether any tier succeeded.
func (c Chain) Run(ctx context.Context, onMiss func(tier string)) (string, string, bool) {
	for _, t := range c {
		r := t.Try(ctx)
		if r.Found {
			return r.Value, t.Name, true
		}
		if onMiss != nil {
			onMiss(t.Name)
		}
	}
	return "", "", false
}
