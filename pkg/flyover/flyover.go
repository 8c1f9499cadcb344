// Package flyover ties the per-frame pipeline together: camera
// choreography, district weight computation, throttled prompt pushes to
// the soundtrack controller, and the area-name indicator. The host
// render loop calls Tick once per frame; everything here completes
// synchronously within the tick.
package flyover

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/skytonelabs/skytone/pkg/district"
	"github.com/skytonelabs/skytone/pkg/geo"
	"github.com/skytonelabs/skytone/pkg/indicator"
	"github.com/skytonelabs/skytone/pkg/kv"
	"github.com/skytonelabs/skytone/pkg/musicrt"
	"github.com/skytonelabs/skytone/pkg/proximity"
	"github.com/skytonelabs/skytone/pkg/tour"
)

// Soundtrack is the subset of the session controller the orchestrator
// drives. *soundtrack.Controller satisfies it; tests substitute a fake.
type Soundtrack interface {
	UpdateWeightedPrompts(prompts []musicrt.WeightedPrompt)
	ResetContext()
}

// Options tunes the orchestration itself. Zero fields take defaults.
type Options struct {
	// PromptInterval is the minimum time between prompt pushes to the
	// backend. Default 500ms.
	PromptInterval time.Duration `yaml:"prompt_interval,omitempty"`

	// PromptEpsilon is the per-prompt weight change below which a new
	// blend is considered unchanged and not pushed. Default 0.01.
	PromptEpsilon float64 `yaml:"prompt_epsilon,omitempty"`

	// DominantThreshold is the minimum weight for a district to be
	// reported to the indicator. Default 0.3.
	DominantThreshold float64 `yaml:"dominant_threshold,omitempty"`

	// TeleportDistance is the per-tick positional jump, in meters, that
	// triggers a backend context reset so the music does not cross-fade
	// across the whole city. Default 1000.
	TeleportDistance float64 `yaml:"teleport_distance,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.PromptInterval <= 0 {
		o.PromptInterval = 500 * time.Millisecond
	}
	if o.PromptEpsilon <= 0 {
		o.PromptEpsilon = 0.01
	}
	if o.DominantThreshold <= 0 {
		o.DominantThreshold = 0.3
	}
	if o.TeleportDistance <= 0 {
		o.TeleportDistance = 1000
	}
	return o
}

// Flyover is the per-frame orchestrator. Not safe for concurrent use;
// it belongs to the render loop.
type Flyover struct {
	opts      Options
	reg       *district.Registry
	proj      *geo.Projector
	engine    *proximity.Engine
	track     Soundtrack
	presenter *indicator.Presenter
	choreo    *tour.Choreographer

	now         time.Duration
	lastPushAt  time.Duration
	lastSent    []proximity.Prompt
	havePushed  bool
	lastPos     geo.Vec3
	haveLastPos bool
}

// New assembles the pipeline from a config. The soundtrack controller
// and the durable store are supplied by the host: the controller owns
// its own sink and API key, the store outlives the flyover.
func New(cfg Config, track Soundtrack, store kv.Store) (*Flyover, error) {
	reg, err := district.NewRegistry(cfg.Districts)
	if err != nil {
		return nil, err
	}
	proj := geo.NewProjector(cfg.Origin)

	choreo, err := tour.New(cfg.Tour, cfg.Waypoints, proj, tour.NewVisitedStore(store))
	if err != nil {
		return nil, fmt.Errorf("flyover: %w", err)
	}

	return &Flyover{
		opts:      cfg.Orchestration.withDefaults(),
		reg:       reg,
		proj:      proj,
		engine:    proximity.NewEngine(reg, proj, cfg.Proximity),
		track:     track,
		presenter: indicator.New(cfg.Indicator),
		choreo:    choreo,
	}, nil
}

// Registry returns the district registry.
func (f *Flyover) Registry() *district.Registry { return f.reg }

// Projector returns the local planar projector.
func (f *Flyover) Projector() *geo.Projector { return f.proj }

// Engine returns the proximity engine.
func (f *Flyover) Engine() *proximity.Engine { return f.engine }

// Presenter returns the indicator presenter.
func (f *Flyover) Presenter() *indicator.Presenter { return f.presenter }

// Tour returns the camera choreographer.
func (f *Flyover) Tour() *tour.Choreographer { return f.choreo }

// AutoStartTour starts the scripted tour if this client has never seen
// it. Returns whether it started.
func (f *Flyover) AutoStartTour(cam tour.Camera) bool {
	return f.choreo.MaybeAutoStart(cam)
}

// Tick advances the pipeline by dt: choreography first (the tour is the
// sole pose writer while active), then weights, prompts, and the
// indicator, all from the post-choreography camera position. The
// computed weight vector is returned for display collaborators.
func (f *Flyover) Tick(cam tour.Camera, dt time.Duration) proximity.Weights {
	if dt < 0 {
		dt = 0
	}
	f.now += dt

	f.choreo.Update(cam, dt)
	pos := cam.Pose().Position

	f.checkTeleport(pos)

	weights := f.engine.Compute(pos)
	f.maybePushPrompts(weights)

	f.presenter.Observe(weights.Dominant(f.opts.DominantThreshold))
	f.presenter.Update(dt)

	return weights
}

// checkTeleport resets the backend generation context when the camera
// jumps farther in one tick than any continuous motion could.
func (f *Flyover) checkTeleport(pos geo.Vec3) {
	defer func() {
		f.lastPos = pos
		f.haveLastPos = true
	}()
	if !f.haveLastPos {
		return
	}
	if d := pos.DistanceTo(f.lastPos); d > f.opts.TeleportDistance {
		slog.Info("flyover: teleport detected, resetting music context", "jump_m", d)
		f.track.ResetContext()
	}
}

// maybePushPrompts forwards the blend to the soundtrack controller,
// rate-limited and suppressed while the blend is materially unchanged.
func (f *Flyover) maybePushPrompts(weights proximity.Weights) {
	prompts := f.engine.Prompts(weights)
	if len(prompts) == 0 {
		// An empty blend would stall the backend; keep the last mix and
		// let the ambient bed (if configured) carry the silence.
		return
	}
	if f.havePushed {
		if f.now-f.lastPushAt < f.opts.PromptInterval {
			return
		}
		if promptsEqual(f.lastSent, prompts, f.opts.PromptEpsilon) {
			return
		}
	}

	blend := make([]musicrt.WeightedPrompt, len(prompts))
	for i, p := range prompts {
		blend[i] = musicrt.WeightedPrompt{Text: p.Text, Weight: p.Weight}
	}
	f.track.UpdateWeightedPrompts(blend)

	f.lastSent = prompts
	f.lastPushAt = f.now
	f.havePushed = true
}

// promptsEqual reports whether two blends differ by at most eps in any
// weight, with identical texts in identical order.
func promptsEqual(a, b []proximity.Prompt, eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
		if math.Abs(a[i].Weight-b[i].Weight) > eps {
			return false
		}
	}
	return true
}
