package retinaface

import (
	"fmt"
	"strings"
	"sync"
)

// Prior is a reference anchor box in center form, normalized to [0,1]
// relative to the network input dimensions
type Prior struct {
	Cx, Cy, W, H float32
}

// validateScales checks the scale configuration describes a usable model
func validateScales(scales []ScaleLevel) error {

	if len(scales) == 0 {
		return fmt.Errorf("%w: no scale levels defined", ErrConfiguration)
	}

	for i, s := range scales {
		if s.Stride <= 0 {
			return fmt.Errorf("%w: scale %d has non-positive stride %d",
				ErrConfiguration, i, s.Stride)
		}

		if len(s.BaseSizes) == 0 {
			return fmt.Errorf("%w: scale %d has no base anchor sizes",
				ErrConfiguration, i)
		}
	}

	return nil
}

// featureDim returns the feature map length for an input dimension at the
// given stride.  Ceiling division is required, a model trained with
// ceiling-based feature maps misaligns if truncation is used instead.
func featureDim(inputDim, stride int) int {
	return (inputDim + stride - 1) / stride
}

// PriorCount returns the total number of priors the scale configuration
// produces for the given input size
func PriorCount(scales []ScaleLevel, inputW, inputH int) int {

	total := 0

	for _, s := range scales {
		total += featureDim(inputH, s.Stride) * featureDim(inputW, s.Stride) *
			len(s.BaseSizes)
	}

	return total
}

// GeneratePriors produces the prior boxes for the given input size and scale
// configuration.  Priors are ordered scale ascending, then row-major over
// the feature map, then by base size within a cell.  This ordering matches
// the order the network emits its per-anchor outputs, decoding aligns flat
// tensor offsets to priors purely by position.
func GeneratePriors(scales []ScaleLevel, inputW, inputH int, clip bool) ([]Prior, error) {

	if err := validateScales(scales); err != nil {
		return nil, err
	}

	priors := make([]Prior, 0, PriorCount(scales, inputW, inputH))

	for _, s := range scales {

		featH := featureDim(inputH, s.Stride)
		featW := featureDim(inputW, s.Stride)

		for row := 0; row < featH; row++ {
			for col := 0; col < featW; col++ {
				for _, size := range s.BaseSizes {

					p := Prior{
						Cx: (float32(col) + 0.5) * float32(s.Stride) / float32(inputW),
						Cy: (float32(row) + 0.5) * float32(s.Stride) / float32(inputH),
						W:  float32(size) / float32(inputW),
						H:  float32(size) / float32(inputH),
					}

					if clip {
						p.Cx = clipUnit(p.Cx)
						p.Cy = clipUnit(p.Cy)
						p.W = clipUnit(p.W)
						p.H = clipUnit(p.H)
					}

					priors = append(priors, p)
				}
			}
		}
	}

	return priors, nil
}

// clipUnit restricts a value to the range [0,1]
func clipUnit(v float32) float32 {

	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

// priorCache memoizes generated priors keyed by input size and scale
// configuration.  Entries are read-mostly after first population so a
// reader-writer guard keeps concurrent decodes cheap.
type priorCache struct {
	mu      sync.RWMutex
	entries map[string][]Prior
}

func newPriorCache() *priorCache {
	return &priorCache{
		entries: make(map[string][]Prior),
	}
}

// cacheKey builds the lookup key for an input size and scale configuration
func cacheKey(scales []ScaleLevel, inputW, inputH int, clip bool) string {

	var b strings.Builder

	fmt.Fprintf(&b, "%dx%d|clip=%t", inputW, inputH, clip)

	for _, s := range scales {
		fmt.Fprintf(&b, "|%d:%v", s.Stride, s.BaseSizes)
	}

	return b.String()
}

// get returns the priors for the given configuration, generating and storing
// them on first use
func (c *priorCache) get(scales []ScaleLevel, inputW, inputH int, clip bool) ([]Prior, error) {

	key := cacheKey(scales, inputW, inputH, clip)

	c.mu.RLock()
	priors, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		return priors, nil
	}

	priors, err := GeneratePriors(scales, inputW, inputH, clip)

	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = priors
	c.mu.Unlock()

	return priors, nil
}
