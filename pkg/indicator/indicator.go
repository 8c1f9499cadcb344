// Package indicator decides when the on-screen area-name overlay shows,
// what it shows, and how it fades. It exists purely to suppress flicker:
// the dominant district can change every frame, the overlay must not.
//
// The presenter is a tick-driven state machine over
// idle → fade-in → visible → fade-out → cooldown. All timing derives
// from the deltas passed to Update, so tests drive it deterministically.
package indicator

import (
	"log/slog"
	"time"
)

// Phase is the presenter's display phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFadeIn
	PhaseVisible
	PhaseFadeOut
	PhaseCooldown
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFadeIn:
		return "fade-in"
	case PhaseVisible:
		return "visible"
	case PhaseFadeOut:
		return "fade-out"
	case PhaseCooldown:
		return "cooldown"
	}
	return "unknown"
}

// Config holds the presenter's timing. Zero fields take defaults.
type Config struct {
	// Debounce is how long a new input value must hold before it is
	// acted on. Default 300ms.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Fade is the fade-in/fade-out ramp duration. Default 500ms.
	Fade time.Duration `yaml:"fade,omitempty"`

	// Display is how long the overlay stays fully visible. Default 2.7s.
	Display time.Duration `yaml:"display,omitempty"`

	// Cooldown follows fade-out; a same-district re-report is ignored
	// until it expires. Default 5s.
	Cooldown time.Duration `yaml:"cooldown,omitempty"`
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 300 * time.Millisecond
	}
	if c.Fade <= 0 {
		c.Fade = 500 * time.Millisecond
	}
	if c.Display <= 0 {
		c.Display = 2700 * time.Millisecond
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Second
	}
	return c
}

// Presenter is the overlay state machine. Not safe for concurrent use;
// it is driven from the render loop only.
type Presenter struct {
	cfg          Config
	onVisibility func(bool)

	now time.Duration // accumulated tick time

	phase     Phase
	displayed string
	opacity   float64

	// Debounce state: the latest raw input and when it last changed.
	candidate      string
	candidateSince time.Duration

	// lastDelivered is the most recent value that passed debounce and
	// was handed to the state machine. Cleared on cooldown → idle so a
	// sustained district can show again.
	lastDelivered string

	// Phase deadlines. Exactly one is armed at a time (none in idle);
	// every transition clears the old one before arming the next, so a
	// stale deadline can never fire into the wrong phase.
	fadeDeadline     time.Duration
	displayDeadline  time.Duration
	cooldownDeadline time.Duration
}

// New creates a presenter.
func New(cfg Config) *Presenter {
	return &Presenter{cfg: cfg.withDefaults()}
}

// OnVisibilityChange registers fn to be called with true exactly when
// the overlay starts appearing (idle/cooldown → fade-in) and false
// exactly when it has fully disappeared (fade-out → cooldown).
func (p *Presenter) OnVisibilityChange(fn func(visible bool)) {
	p.onVisibility = fn
}

// Phase returns the current display phase.
func (p *Presenter) Phase() Phase { return p.phase }

// Displayed returns the district ID the overlay is showing, or "".
func (p *Presenter) Displayed() string { return p.displayed }

// Opacity returns the overlay opacity in [0, 1].
func (p *Presenter) Opacity() float64 { return p.opacity }

// Observe feeds one "current dominant district or none" sample. Rapid
// changes are coalesced: only a value that survives the debounce window
// reaches the state machine.
func (p *Presenter) Observe(districtID string) {
	if districtID != p.candidate {
		p.candidate = districtID
		p.candidateSince = p.now
	}
}

// Update advances time by dt and runs any due transitions.
func (p *Presenter) Update(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	p.now += dt

	switch p.phase {
	case PhaseFadeIn:
		p.opacity = 1 - p.remainingFraction(p.fadeDeadline)
		if p.now >= p.fadeDeadline {
			p.fadeDeadline = 0
			p.opacity = 1
			p.phase = PhaseVisible
			p.displayDeadline = p.now + p.cfg.Display
		}
	case PhaseVisible:
		if p.now >= p.displayDeadline {
			p.displayDeadline = 0
			p.phase = PhaseFadeOut
			p.fadeDeadline = p.now + p.cfg.Fade
		}
	case PhaseFadeOut:
		p.opacity = p.remainingFraction(p.fadeDeadline)
		if p.now >= p.fadeDeadline {
			p.fadeDeadline = 0
			p.opacity = 0
			p.phase = PhaseCooldown
			p.cooldownDeadline = p.now + p.cfg.Cooldown
			p.notify(false)
		}
	case PhaseCooldown:
		if p.now >= p.cooldownDeadline {
			p.cooldownDeadline = 0
			p.phase = PhaseIdle
			p.displayed = ""
			// Allow a still-held district to show again.
			p.lastDelivered = ""
		}
	}

	p.deliverDebounced()
}

// remainingFraction returns how much of a fade is left before deadline,
// in [0, 1].
func (p *Presenter) remainingFraction(deadline time.Duration) float64 {
	if p.now >= deadline {
		return 0
	}
	f := float64(deadline-p.now) / float64(p.cfg.Fade)
	if f > 1 {
		f = 1
	}
	return f
}

// deliverDebounced promotes the candidate to a state-machine event once
// it has held for the debounce window.
func (p *Presenter) deliverDebounced() {
	if p.candidate == p.lastDelivered {
		return
	}
	if p.now-p.candidateSince < p.cfg.Debounce {
		return
	}
	p.lastDelivered = p.candidate
	p.handle(p.candidate)
}

// handle applies one debounced input event to the current phase.
func (p *Presenter) handle(districtID string) {
	if districtID == "" {
		// Loss of a dominant district never hides the overlay early;
		// the display timer owns that.
		return
	}

	switch p.phase {
	case PhaseIdle, PhaseCooldown:
		// During cooldown the district shown last stays ignored until
		// the cooldown runs out.
		if p.phase == PhaseCooldown && districtID == p.displayed {
			p.lastDelivered = ""
			return
		}
		from := p.phase
		p.cooldownDeadline = 0
		p.displayed = districtID
		p.phase = PhaseFadeIn
		p.fadeDeadline = p.now + p.cfg.Fade
		slog.Debug("indicator: showing district", "district", districtID, "from", from.String())
		p.notify(true)

	case PhaseFadeIn:
		// Swap content mid-fade; the ramp continues.
		p.displayed = districtID

	case PhaseVisible:
		if districtID == p.displayed {
			return
		}
		// Swap without flicker and give the new name a full display
		// window.
		p.displayed = districtID
		p.displayDeadline = p.now + p.cfg.Display

	case PhaseFadeOut:
		// Cancel the fade and ramp straight back up from the current
		// opacity.
		p.displayed = districtID
		remaining := time.Duration((1 - p.opacity) * float64(p.cfg.Fade))
		p.fadeDeadline = p.now + remaining
		p.phase = PhaseFadeIn
	}
}

func (p *Presenter) notify(visible bool) {
	if p.onVisibility != nil {
		p.onVisibility(visible)
	}
}
