package indicator

import (
	"testing"
	"time"
)

const tick = 100 * time.Millisecond

// run advances the presenter n ticks.
func run(p *Presenter, n int) {
	for i := 0; i < n; i++ {
		p.Update(tick)
	}
}

func newTestPresenter() *Presenter {
	return New(Config{
		Debounce: 300 * time.Millisecond,
		Fade:     500 * time.Millisecond,
		Display:  2700 * time.Millisecond,
		Cooldown: 5 * time.Second,
	})
}

func TestDebounceSuppressesFlicker(t *testing.T) {
	p := newTestPresenter()

	// A holds for only 200ms before B replaces it: A must never show.
	p.Observe("a")
	run(p, 2) // 200ms
	p.Observe("b")

	run(p, 2) // b held 200ms: still nothing
	if p.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", p.Phase())
	}

	run(p, 1) // b held 300ms
	if p.Phase() != PhaseFadeIn {
		t.Fatalf("phase = %v, want fade-in", p.Phase())
	}
	if got := p.Displayed(); got != "b" {
		t.Fatalf("displayed = %q, want b (a was flicker)", got)
	}
}

func TestExactVisibilityWindow(t *testing.T) {
	p := newTestPresenter()

	var events []struct {
		at      time.Duration
		visible bool
	}
	elapsed := time.Duration(0)
	p.OnVisibilityChange(func(v bool) {
		events = append(events, struct {
			at      time.Duration
			visible bool
		}{elapsed, v})
	})

	p.Observe("a")
	for elapsed < 12*time.Second {
		elapsed += tick
		p.Update(tick)

		switch elapsed {
		case 800 * time.Millisecond: // debounce + fade
			if p.Phase() != PhaseVisible || p.Opacity() != 1 {
				t.Fatalf("at 800ms: phase=%v opacity=%v", p.Phase(), p.Opacity())
			}
		case 3400 * time.Millisecond: // still inside display window
			if p.Phase() != PhaseVisible {
				t.Fatalf("at 3.4s: phase=%v", p.Phase())
			}
		case 4 * time.Second: // debounce + fade + display + fade
			if p.Phase() != PhaseCooldown || p.Opacity() != 0 {
				t.Fatalf("at 4s: phase=%v opacity=%v", p.Phase(), p.Opacity())
			}
		}
	}

	if len(events) != 3 {
		t.Fatalf("events = %+v, want show/hide/redisplay", events)
	}
	if events[0].visible != true || events[0].at != 300*time.Millisecond {
		t.Fatalf("show edge = %+v, want true at 300ms", events[0])
	}
	if events[1].visible != false || events[1].at != 4*time.Second {
		t.Fatalf("hide edge = %+v, want false at 4s", events[1])
	}

	// Cooldown ends 5s after hide; the still-held district redisplays.
	if events[2].visible != true || events[2].at != 9*time.Second {
		t.Fatalf("redisplay edge = %+v, want true at 9s", events[2])
	}
}

func TestSwapWhileVisibleResetsTimer(t *testing.T) {
	p := newTestPresenter()

	p.Observe("a")
	run(p, 8) // 800ms: visible
	if p.Phase() != PhaseVisible || p.Displayed() != "a" {
		t.Fatalf("phase=%v displayed=%q", p.Phase(), p.Displayed())
	}

	// 2s into the display window, b takes over.
	run(p, 20)
	p.Observe("b")
	run(p, 3) // debounce for b

	if p.Phase() != PhaseVisible {
		t.Fatalf("swap left visible: phase=%v", p.Phase())
	}
	if p.Displayed() != "b" {
		t.Fatalf("displayed = %q, want b", p.Displayed())
	}

	// The timer restarted: 2.6s later we are still visible, and only
	// after the full fresh window does fade-out start.
	run(p, 26)
	if p.Phase() != PhaseVisible {
		t.Fatalf("display timer did not reset: phase=%v", p.Phase())
	}
	run(p, 2)
	if p.Phase() != PhaseFadeOut {
		t.Fatalf("phase = %v, want fade-out", p.Phase())
	}
}

func TestSameDistrictWhileVisibleIsNoop(t *testing.T) {
	p := newTestPresenter()

	p.Observe("a")
	run(p, 8) // visible
	// Interrupt with none, then re-report a; the re-delivery must not
	// reset the display window.
	p.Observe("")
	run(p, 3)
	p.Observe("a")
	run(p, 3)
	if p.Phase() != PhaseVisible {
		t.Fatalf("phase = %v", p.Phase())
	}

	// Original deadline was 800ms + 2700ms = 3.5s; we are at 1.4s.
	// 21 more ticks also gets there.
	run(p, 21)
	if p.Phase() != PhaseFadeOut {
		t.Fatalf("phase = %v, want fade-out (window not extended)", p.Phase())
	}
}

func TestArrivalDuringFadeOut(t *testing.T) {
	p := newTestPresenter()

	p.Observe("a")
	run(p, 8)  // visible at 800ms
	run(p, 27) // display window over at 3.5s
	run(p, 1)  // one tick into fade-out
	if p.Phase() != PhaseFadeOut {
		t.Fatalf("phase = %v", p.Phase())
	}

	p.Observe("b")
	run(p, 3) // debounce
	if p.Phase() != PhaseFadeIn {
		t.Fatalf("phase = %v, want fade-in (fade-out cancelled)", p.Phase())
	}
	if p.Displayed() != "b" {
		t.Fatalf("displayed = %q", p.Displayed())
	}

	// Opacity ramps up from where the fade-out left it, so it reaches
	// full quickly.
	run(p, 5)
	if p.Phase() != PhaseVisible {
		t.Fatalf("phase = %v, want visible", p.Phase())
	}
}

func TestCooldownSameDistrictIgnored(t *testing.T) {
	p := newTestPresenter()

	p.Observe("a")
	run(p, 40) // through the full cycle into cooldown (4s)
	if p.Phase() != PhaseCooldown {
		t.Fatalf("phase = %v, want cooldown", p.Phase())
	}

	// a drops out and returns during cooldown: still ignored.
	p.Observe("")
	run(p, 4)
	p.Observe("a")
	run(p, 4)
	if p.Phase() != PhaseCooldown {
		t.Fatalf("same district during cooldown redisplayed: %v", p.Phase())
	}

	// A different district interrupts the cooldown immediately.
	p.Observe("b")
	run(p, 3)
	if p.Phase() != PhaseFadeIn || p.Displayed() != "b" {
		t.Fatalf("phase=%v displayed=%q, want fade-in b", p.Phase(), p.Displayed())
	}
}

func TestNoneInputNeverShows(t *testing.T) {
	p := newTestPresenter()
	p.Observe("")
	run(p, 50)
	if p.Phase() != PhaseIdle || p.Opacity() != 0 {
		t.Fatalf("phase=%v opacity=%v", p.Phase(), p.Opacity())
	}
}

func TestOpacityMonotoneDuringFades(t *testing.T) {
	p := newTestPresenter()
	p.Observe("a")
	run(p, 3) // fade-in starts

	prev := p.Opacity()
	for i := 0; i < 5; i++ {
		p.Update(tick)
		if p.Opacity() < prev {
			t.Fatalf("opacity decreased during fade-in: %v < %v", p.Opacity(), prev)
		}
		prev = p.Opacity()
	}
	if prev != 1 {
		t.Fatalf("opacity = %v after full fade, want 1", prev)
	}
}
