// Package proximity converts a camera position into normalized district
// influence weights. The engine is a pure function of its inputs and is
// cheap enough to call on every render tick.
package proximity

import (
	"math"
	"sort"

	"github.com/skytonelabs/skytone/pkg/district"
	"github.com/skytonelabs/skytone/pkg/geo"
)

// Falloff selects the shape of the distance-to-weight curve. All shapes
// are monotonically decreasing, 1 at the anchor and 0 at the influence
// radius.
type Falloff string

const (
	// FalloffSmooth is (1-t²)², a bump with smooth tails. Default.
	FalloffSmooth Falloff = "smooth"
	// FalloffLinear is 1-t.
	FalloffLinear Falloff = "linear"
	// FalloffCosine is ½(1+cos πt).
	FalloffCosine Falloff = "cosine"
)

// apply evaluates the falloff at normalized distance t ∈ [0, ∞).
func (f Falloff) apply(t float64) float64 {
	if t >= 1 {
		return 0
	}
	if t < 0 {
		t = 0
	}
	switch f {
	case FalloffLinear:
		return 1 - t
	case FalloffCosine:
		return 0.5 * (1 + math.Cos(math.Pi*t))
	default:
		u := 1 - t*t
		return u * u
	}
}

// Config tunes the engine. The falloff shape and normalization cap are
// deliberately configuration, not constants.
type Config struct {
	// Falloff is the distance-to-weight curve shape.
	Falloff Falloff `yaml:"falloff,omitempty"`

	// MaxTotal caps the summed weight across all districts. Raw weights
	// are scaled down proportionally only when their sum exceeds it, so
	// isolated districts keep their full local weight and overlapping
	// districts compete. Must be in (0, 1]. Default 1.
	MaxTotal float64 `yaml:"max_total,omitempty"`

	// MinPromptWeight drops entries below this weight from the prompt
	// blend, so a distant district does not oversaturate the mix.
	// Default 0.05.
	MinPromptWeight float64 `yaml:"min_prompt_weight,omitempty"`

	// AmbientPrompt, when set, absorbs the headroom left by the
	// districts: it is emitted with weight 1-total so a neutral bed
	// dominates far from every district.
	AmbientPrompt string `yaml:"ambient_prompt,omitempty"`
}

// withDefaults returns cfg with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.Falloff == "" {
		c.Falloff = FalloffSmooth
	}
	if c.MaxTotal <= 0 || c.MaxTotal > 1 {
		c.MaxTotal = 1
	}
	if c.MinPromptWeight <= 0 {
		c.MinPromptWeight = 0.05
	}
	return c
}

// Entry is one district's influence at a position.
type Entry struct {
	DistrictID string
	Weight     float64
	Distance   float64
}

// Weights is the per-tick weight vector: one entry per registered
// district, sorted by descending weight with ties broken by registry
// order. Weights are non-negative and sum to at most Config.MaxTotal.
type Weights struct {
	Entries []Entry
	Total   float64
}

// Dominant returns the id of the strongest district, or "" when no
// district reaches threshold.
func (w Weights) Dominant(threshold float64) string {
	if len(w.Entries) == 0 || w.Entries[0].Weight < threshold {
		return ""
	}
	return w.Entries[0].DistrictID
}

// Prompt is a weighted prompt derived from the weight vector, ready to
// hand to the generative-audio controller.
type Prompt struct {
	Text   string
	Weight float64
}

// Engine computes weight vectors for a fixed registry. It holds no
// mutable state and is safe to share.
type Engine struct {
	reg     *district.Registry
	cfg     Config
	anchors []geo.Vec3 // projected district anchors, registry order
}

// NewEngine creates an engine for the registry. Anchor positions are
// projected once through proj.
func NewEngine(reg *district.Registry, proj *geo.Projector, cfg Config) *Engine {
	e := &Engine{reg: reg, cfg: cfg.withDefaults()}
	for _, d := range reg.All() {
		e.anchors = append(e.anchors, proj.Project(d.Anchor, 0))
	}
	return e
}

// Compute returns the weight vector for a camera position. Distance is
// measured in the ground plane; altitude does not reduce influence.
// An empty registry yields an empty vector.
func (e *Engine) Compute(pos geo.Vec3) Weights {
	districts := e.reg.All()
	if len(districts) == 0 {
		return Weights{}
	}

	entries := make([]Entry, len(districts))
	total := 0.0
	for i, d := range districts {
		delta := pos.Sub(e.anchors[i])
		delta.Z = 0
		dist := delta.Length()
		w := e.cfg.Falloff.apply(dist / d.Radius)
		entries[i] = Entry{DistrictID: d.ID, Weight: w, Distance: dist}
		total += w
	}

	// Scale down only when the districts collectively exceed the cap;
	// far from everything the total decays toward zero instead of
	// being renormalized up.
	if total > e.cfg.MaxTotal {
		scale := e.cfg.MaxTotal / total
		for i := range entries {
			entries[i].Weight *= scale
		}
		total = e.cfg.MaxTotal
	}

	// Descending by weight; SliceStable keeps registry order on ties.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	return Weights{Entries: entries, Total: total}
}

// Prompts derives the weighted prompt blend from a weight vector:
// entries at or above MinPromptWeight, plus the ambient bed filling the
// remaining headroom when configured.
func (e *Engine) Prompts(w Weights) []Prompt {
	var prompts []Prompt
	for _, entry := range w.Entries {
		if entry.Weight < e.cfg.MinPromptWeight {
			break
		}
		d := e.reg.ByID(entry.DistrictID)
		if d == nil {
			continue
		}
		prompts = append(prompts, Prompt{Text: d.Prompt, Weight: entry.Weight})
	}
	if e.cfg.AmbientPrompt != "" {
		if bed := 1 - w.Total; bed >= e.cfg.MinPromptWeight {
			prompts = append(prompts, Prompt{Text: e.cfg.AmbientPrompt, Weight: bed})
		}
	}
	return prompts
}
