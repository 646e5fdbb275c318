package vibe

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vibesync/vibesync/internal/config"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOnsetDebounce(t *testing.T) {
	c := newTestClassifier(t)
	base := time.Now()

	c.Observe(base, 2.0)
	c.Observe(base.Add(50*time.Millisecond), 2.0) // inside debounce, dropped
	c.Observe(base.Add(150*time.Millisecond), 2.0)

	if got := c.OnsetCount(); got != 2 {
		t.Fatalf("debounce should leave 2 onsets, got %d", got)
	}
}

func TestOnsetLogPruned(t *testing.T) {
	cfg := config.Default()
	c := newTestClassifier(t)
	base := time.Now()

	for i := 0; i < 10; i++ {
		c.Observe(base.Add(time.Duration(i)*200*time.Millisecond), 2.0)
	}
	// Far in the future every recorded onset is stale.
	c.Observe(base.Add(cfg.OnsetWindow+3*time.Second), 2.0)

	if got := c.OnsetCount(); got != 1 {
		t.Fatalf("prune should leave only the fresh onset, got %d", got)
	}
}

func TestDensityPrunesAtReadTime(t *testing.T) {
	c := newTestClassifier(t)
	base := time.Now()

	// 5 onsets over one second, then nothing: reads during the silence must
	// not keep reporting them once they age out of the window, even though
	// no further Observe call prunes the log.
	for i := 0; i < 5; i++ {
		c.Observe(base.Add(time.Duration(i)*200*time.Millisecond), 2.0)
	}
	if got := c.Density(base.Add(time.Second)); got != 1.0 {
		t.Fatalf("fresh density = %f, want 1.0", got)
	}
	if got := c.Density(base.Add(10 * time.Second)); got != 0 {
		t.Fatalf("stale density = %f, want 0", got)
	}
}

func TestQuietInputStaysCalm(t *testing.T) {
	c := newTestClassifier(t)
	base := time.Now()

	for i := 0; i < 100; i++ {
		if mood := c.Observe(base.Add(time.Duration(i)*100*time.Millisecond), 0.2); mood != Calm {
			t.Fatalf("quiet input classified as %s", mood)
		}
	}
}

func TestSustainedDensityClimbsWithCooldownSpacing(t *testing.T) {
	cfg := config.Default()
	c := newTestClassifier(t)
	base := time.Now()

	// 6 onsets/sec for half a minute: the mood must pass through ACTIVE on
	// its way to INTENSE, each change separated by at least the cooldown.
	var transitions []struct {
		mood Mood
		at   time.Time
	}
	last := c.Mood()
	for i := 0; i < 180; i++ {
		now := base.Add(time.Duration(i) * 166 * time.Millisecond)
		mood := c.Observe(now, 2.0)
		if mood != last {
			transitions = append(transitions, struct {
				mood Mood
				at   time.Time
			}{mood, now})
			last = mood
		}
	}

	if len(transitions) < 2 {
		t.Fatalf("expected at least 2 transitions, got %v", transitions)
	}
	if transitions[0].mood != Active || transitions[1].mood != Intense {
		t.Fatalf("expected CALM->ACTIVE->INTENSE, got %v", transitions)
	}
	if gap := transitions[1].at.Sub(transitions[0].at); gap < cfg.SwitchCooldown {
		t.Fatalf("transitions spaced %v, want at least %v", gap, cfg.SwitchCooldown)
	}
}

func TestNoMoodFlappingUnderAdversarialInput(t *testing.T) {
	cfg := config.Default()
	c := newTestClassifier(t)
	base := time.Now()

	// Alternate bursts of maximum and zero density every 2 seconds for a
	// minute; mood changes must still be spaced by the cooldown.
	var changeTimes []time.Time
	last := c.Mood()
	for ms := 0; ms < 60_000; ms += 50 {
		now := base.Add(time.Duration(ms) * time.Millisecond)
		drive := 0.0
		if (ms/2000)%2 == 0 {
			drive = 3.0
		}
		mood := c.Observe(now, drive)
		if mood != last {
			changeTimes = append(changeTimes, now)
			last = mood
		}
	}

	for i := 1; i < len(changeTimes); i++ {
		if gap := changeTimes[i].Sub(changeTimes[i-1]); gap < cfg.SwitchCooldown {
			t.Fatalf("mood changed twice within %v (< cooldown %v)", gap, cfg.SwitchCooldown)
		}
	}
}

func TestReaffirmingMoodDoesNotResetCooldown(t *testing.T) {
	c := newTestClassifier(t)
	base := time.Now()

	// Build ACTIVE density and let the first transition fire.
	var active time.Time
	for ms := 0; ms < 12_000; ms += 200 {
		now := base.Add(time.Duration(ms) * time.Millisecond)
		drive := 0.0
		if ms%500 == 0 { // ~2 onsets/sec
			drive = 2.0
		}
		if c.Observe(now, drive) == Active && active.IsZero() {
			active = now
		}
	}
	if active.IsZero() {
		t.Fatal("never reached ACTIVE")
	}

	// Keep re-affirming ACTIVE past the cooldown, then go silent: the drop
	// back to CALM must not be delayed by the re-affirmations, only by the
	// last actual change.
	now := active
	for ms := 0; ms < 11_000; ms += 500 {
		now = active.Add(time.Duration(ms) * time.Millisecond)
		c.Observe(now, 2.0)
	}
	if c.Mood() != Active {
		t.Fatalf("expected ACTIVE to persist, got %s", c.Mood())
	}

	// Silence long enough to empty the window; cooldown since the ACTIVE
	// change has long expired even though ACTIVE kept being re-affirmed.
	for ms := 0; ms < 6_000; ms += 200 {
		c.Observe(now.Add(time.Duration(ms)*time.Millisecond), 0)
	}
	if c.Mood() != Calm {
		t.Fatalf("re-affirmation must not reset the cooldown; still %s", c.Mood())
	}
}

func TestMoodTuningShape(t *testing.T) {
	if !Intense.Tuning().RedPriority || !Intense.Tuning().Strobe {
		t.Fatal("INTENSE must enable red priority and strobe")
	}
	if !Active.Tuning().Pastel {
		t.Fatal("ACTIVE must enable pastel saturation")
	}
	calm := Calm.Tuning()
	if calm.RedPriority || calm.Strobe || calm.Pastel {
		t.Fatal("CALM must carry no accents")
	}
	if !(Intense.Tuning().Smoothing > Calm.Tuning().Smoothing) {
		t.Fatal("INTENSE must converge faster than CALM")
	}
}
