// Package pick selects random hymns for the random command.
package pick

import (
	"math/rand"
	"time"

	"hymnal/internal/model"
)

// Picker produces randomized hymn selections.
type Picker struct {
	rnd *rand.Rand
}

// New returns a Picker seeded with the current time.
func New() *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Picker with a fixed seed.
func NewSeeded(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects a hymn uniformly.
func (p *Picker) Pick(hymns []model.Hymn) (model.Hymn, bool) {
	if len(hymns) == 0 {
		return model.Hymn{}, false
	}
	return hymns[p.rnd.Intn(len(hymns))], true
}

// PickWeighted selects a hymn with a bias toward favorites and away from
// heavily-viewed entries, so rotation surfaces less-sung hymns.
func (p *Picker) PickWeighted(hymns []model.Hymn, favorites map[int]struct{}, viewCounts map[int]int, favoriteFactor float64) (model.Hymn, bool) {
	if len(hymns) == 0 {
		return model.Hymn{}, false
	}
	if favoriteFactor < 0 {
		favoriteFactor = 0
	}

	weights := make([]float64, len(hymns))
	total := 0.0
	for i, h := range hymns {
		w := 1.0 / (1.0 + float64(viewCounts[h.Number]))
		if _, ok := favorites[h.Number]; ok {
			w *= 1.0 + favoriteFactor
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return hymns[p.rnd.Intn(len(hymns))], true
	}

	r := p.rnd.Float64() * total
	acc := 0.0
	idx := 0
	for i, w := range weights {
		acc += w
		if r <= acc {
			idx = i
			break
		}
	}
	return hymns[idx], true
}
