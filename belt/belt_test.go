package belt_test

import (
	"math"
	"testing"
	"time"

	"github.com/fogleman/ease"
	"github.com/matt-g-everett/ledbelt/belt"
	"github.com/matt-g-everett/ledbelt/belt/belttest"
)

const ms = time.Millisecond

func assertNear(t testing.TB, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v but expected %v", got, want)
	}
}

func newBelt(options belt.Options) (*belt.Belt, *belttest.Scheduler, *belttest.Recorder) {
	sched := belttest.NewScheduler()
	rec := new(belttest.Recorder)
	b := belt.New(sched, options)
	b.On(belt.EventUpdate, rec.Listen)
	return b, sched, rec
}

func count(values []float64, v float64) int {
	n := 0
	for _, x := range values {
		if x == v {
			n++
		}
	}
	return n
}

func TestRunEmitsEasedProgress(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 100 * ms, Easing: ease.InQuad})
	b.Run()
	if !b.Running() {
		t.Fatal("expected running after Run")
	}

	sched.Fire(1000 * ms)
	sched.Fire(1050 * ms)
	values := rec.Values()
	if len(values) != 2 {
		t.Fatalf("got %d updates", len(values))
	}
	assertNear(t, values[0], 0)
	assertNear(t, values[1], ease.InQuad(0.5))
}

func TestTerminalValueIsExactEndpoint(t *testing.T) {
	cases := []struct {
		name    string
		reverse bool
		want    float64
	}{
		{"forward", false, 1},
		{"reverse", true, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, sched, rec := newBelt(belt.Options{Duration: 100 * ms, Reverse: c.reverse, Easing: ease.InQuad})
			b.Run()
			sched.Fire(0)
			sched.Fire(60 * ms)
			// Overshoots the end of the pass.
			sched.Fire(173 * ms)

			last, _ := rec.Last()
			if last != c.want {
				t.Errorf("got terminal %v, want %v", last, c.want)
			}
			if b.Running() {
				t.Error("expected idle after a single pass")
			}
			if sched.Pending() != 0 {
				t.Errorf("expected no pending frames, got %d", sched.Pending())
			}
			if b.Elapsed() != 0 {
				t.Errorf("expected elapsed reset, got %v", b.Elapsed())
			}
		})
	}
}

func TestLoopKeepsRunning(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 100 * ms, Loop: true})
	b.Run()

	sched.Fire(0)
	sched.Fire(50 * ms)
	sched.Fire(100 * ms)
	if !b.Running() {
		t.Fatal("expected running after first pass")
	}
	sched.Fire(150 * ms)
	sched.Fire(210 * ms)
	if !b.Running() {
		t.Fatal("expected running after second pass")
	}

	values := rec.Values()
	if n := count(values, 1); n != 2 {
		t.Errorf("got %d terminal updates in %v", n, values)
	}
	assertNear(t, values[3], 0.5)
	if sched.Pending() != 1 {
		t.Errorf("expected one pending frame, got %d", sched.Pending())
	}
}

func TestRoundTripStopsAfterReturnPass(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 100 * ms, Round: true})
	b.Run()

	sched.Fire(0)
	sched.Fire(100 * ms)
	if !b.Turn() {
		t.Fatal("expected turn after outbound pass")
	}
	if !b.Running() {
		t.Fatal("expected return pass to run")
	}
	sched.Fire(125 * ms)
	sched.Fire(200 * ms)

	values := rec.Values()
	want := []float64{0, 1, 0.75, 0}
	if len(values) != len(want) {
		t.Fatalf("got %v, want %v", values, want)
	}
	for i := range want {
		assertNear(t, values[i], want[i])
	}
	if b.Running() {
		t.Error("expected idle after return pass")
	}
	if b.Turn() {
		t.Error("expected turn reset on completion")
	}
	if sched.Pending() != 0 {
		t.Errorf("expected no pending frames, got %d", sched.Pending())
	}
}

func TestRoundWithLoopRepeatsWholeCycle(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 100 * ms, Round: true, Loop: true})
	b.Run()

	sched.Fire(0)
	for i := 1; i <= 4; i++ {
		sched.Fire(time.Duration(i) * 100 * ms)
	}

	values := rec.Values()
	want := []float64{0, 1, 0, 1, 0}
	for i := range want {
		assertNear(t, values[i], want[i])
	}
	if !b.Running() {
		t.Error("expected round trip to repeat")
	}
	if b.Turn() {
		t.Error("expected outbound pass after four completed passes")
	}
}

func TestZeroDurationCompletesOnFirstFrame(t *testing.T) {
	for _, loop := range []bool{false, true} {
		b, sched, rec := newBelt(belt.Options{Duration: 0, Loop: loop})
		b.Run()
		sched.Fire(16 * ms)

		values := rec.Values()
		if len(values) != 1 || values[0] != 1 {
			t.Errorf("loop=%v: got %v, want a single terminal 1", loop, values)
		}
		if sched.Requests() != 1 {
			t.Errorf("loop=%v: scheduler asked %d times", loop, sched.Requests())
		}
		if b.Running() {
			t.Errorf("loop=%v: expected idle", loop)
		}
	}
}

func TestRestartCancelsPendingFrame(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 100 * ms})
	b.Run()
	sched.Fire(0)
	sched.Fire(40 * ms)

	b.Run()
	if sched.Cancels() != 1 {
		t.Errorf("expected the pending frame to be cancelled, got %d cancels", sched.Cancels())
	}
	if sched.Pending() != 1 {
		t.Fatalf("expected a single frame chain, got %d pending", sched.Pending())
	}

	sched.Fire(50 * ms)
	sched.Fire(100 * ms)
	values := rec.Values()
	want := []float64{0, 0.4, 0, 0.5}
	if len(values) != len(want) {
		t.Fatalf("got %v, want %v", values, want)
	}
	for i := range want {
		assertNear(t, values[i], want[i])
	}
}

func TestRestartAfterCompletion(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 100 * ms})
	b.Run()
	sched.Fire(0)
	sched.Fire(100 * ms)
	b.Run()
	if sched.Cancels() != 0 {
		t.Error("idle belt has nothing to cancel")
	}
	sched.Fire(500 * ms)
	sched.Fire(550 * ms)
	last, _ := rec.Last()
	assertNear(t, last, 0.5)
}

func TestListenerMayCallBack(t *testing.T) {
	sched := belttest.NewScheduler()
	b := belt.New(sched, belt.Options{Duration: 100 * ms})
	var seen time.Duration
	b.On(belt.EventUpdate, func(float64) {
		seen = b.Options().Duration
		b.Set(belt.KeyLoop, true)
	})
	b.Run()
	sched.Fire(0)
	if seen != 100*ms {
		t.Errorf("got %v", seen)
	}
	if loop, _ := b.Get(belt.KeyLoop); loop != true {
		t.Error("expected loop set from listener")
	}
}

func TestOnceAndOff(t *testing.T) {
	b, sched, _ := newBelt(belt.Options{Duration: 100 * ms, Loop: true})
	once := 0
	b.Once(belt.EventUpdate, func(float64) { once++ })
	every := 0
	id := b.On(belt.EventUpdate, func(float64) { every++ })

	b.Run()
	sched.Fire(0)
	sched.Fire(10 * ms)
	b.Off(belt.EventUpdate, id)
	sched.Fire(20 * ms)

	if once != 1 {
		t.Errorf("once listener ran %d times", once)
	}
	if every != 2 {
		t.Errorf("removed listener ran %d times", every)
	}
}

func TestOnAllOffAll(t *testing.T) {
	b, sched, _ := newBelt(belt.Options{Duration: 100 * ms, Loop: true})
	var got []float64
	subs := b.OnAll(map[string]belt.Listener{
		belt.EventUpdate: func(v float64) { got = append(got, v) },
	})
	if b.ListenerCount(belt.EventUpdate) != 2 {
		t.Fatalf("got %d listeners", b.ListenerCount(belt.EventUpdate))
	}

	b.Run()
	sched.Fire(0)
	if n := b.OffAll(subs); n != 1 {
		t.Errorf("removed %d", n)
	}
	sched.Fire(50 * ms)
	if len(got) != 1 {
		t.Errorf("got %v", got)
	}
}

func TestVariableFrameDeltas(t *testing.T) {
	b, sched, rec := newBelt(belt.Options{Duration: 1000 * ms})
	b.Run()
	sched.Fire(0)
	for _, ts := range []time.Duration{3, 40, 41, 400, 999} {
		sched.Fire(ts * ms)
	}
	values := rec.Values()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("progress went backwards: %v", values)
		}
	}
	assertNear(t, values[len(values)-1], 0.999)
}
