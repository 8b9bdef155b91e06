package genes

import (
	"fmt"
	"math"
)

// Comparison measures how similar two codon-bias profiles are. The host
// profile is the explanatory side of the regression, matching the
// convention that a virus is read against its candidate host.
type Comparison struct {
	host  []float64
	virus []float64
}

// NewComparison pairs two equally long profile vectors.
func NewComparison(host, virus []float64) (*Comparison, error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("comparison: empty profile")
	}
	if len(host) != len(virus) {
		return nil, fmt.Errorf("comparison: profile lengths differ (%d vs %d)", len(host), len(virus))
	}
	return &Comparison{host: host, virus: virus}, nil
}

// CountVector aligns integer counts on the given key order.
func CountVector(counts map[string]int, keys []string) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = float64(counts[k])
	}
	return out
}

// FreqVector aligns float values on the given key order.
func FreqVector(vals map[string]float64, keys []string) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = vals[k]
	}
	return out
}

// LinearRegression fits virus = slope*host + intercept by least squares.
func (c *Comparison) LinearRegression() (slope, intercept float64, err error) {
	n := float64(len(c.host))
	var sumX, sumY float64
	for i := range c.host {
		sumX += c.host[i]
		sumY += c.virus[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var covXY, varX float64
	for i := range c.host {
		dx := c.host[i] - meanX
		covXY += dx * (c.virus[i] - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return 0, 0, fmt.Errorf("comparison: host profile: %w", ErrZeroVariance)
	}
	slope = covXY / varX
	intercept = meanY - slope*meanX
	return slope, intercept, nil
}

// RSquared returns the coefficient of determination of the regression.
func (c *Comparison) RSquared() (float64, error) {
	slope, intercept, err := c.LinearRegression()
	if err != nil {
		return 0, err
	}
	n := float64(len(c.virus))
	var sumY float64
	for _, y := range c.virus {
		sumY += y
	}
	meanY := sumY / n

	var ssRes, ssTot float64
	for i, y := range c.virus {
		pred := slope*c.host[i] + intercept
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return 0, fmt.Errorf("comparison: virus profile: %w", ErrZeroVariance)
	}
	return 1 - ssRes/ssTot, nil
}

// CosineSimilarity returns the cosine of the angle between the profiles.
func (c *Comparison) CosineSimilarity() (float64, error) {
	var dot, normHost, normVirus float64
	for i := range c.host {
		dot += c.host[i] * c.virus[i]
		normHost += c.host[i] * c.host[i]
		normVirus += c.virus[i] * c.virus[i]
	}
	if normHost == 0 || normVirus == 0 {
		return 0, fmt.Errorf("comparison: %w", ErrZeroVector)
	}
	return dot / (math.Sqrt(normHost) * math.Sqrt(normVirus)), nil
}
