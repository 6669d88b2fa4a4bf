package drone

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SMerrony/tello"
)

// fakeStick records stick deflections in order.
type fakeStick struct {
	mu        sync.Mutex
	events    []string
	connected bool
	battery   int8
}

func (f *fakeStick) log(e string) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
}

func (f *fakeStick) TakeOff()              { f.log("takeoff") }
func (f *fakeStick) Land()                 { f.log("land") }
func (f *fakeStick) Hover()                { f.log("hover") }
func (f *fakeStick) Forward(pct int)       { f.log("forward") }
func (f *fakeStick) Backward(pct int)      { f.log("backward") }
func (f *fakeStick) Left(pct int)          { f.log("left") }
func (f *fakeStick) Right(pct int)         { f.log("right") }
func (f *fakeStick) Up(pct int)            { f.log("up") }
func (f *fakeStick) Down(pct int)          { f.log("down") }
func (f *fakeStick) Clockwise(pct int)     { f.log("cw") }
func (f *fakeStick) Anticlockwise(pct int) { f.log("ccw") }
func (f *fakeStick) ControlConnected() bool {
	return f.connected
}
func (f *fakeStick) ControlDisconnect() { f.log("disconnect") }
func (f *fakeStick) GetFlightData() tello.FlightData {
	return tello.FlightData{BatteryPercentage: f.battery}
}

func (f *fakeStick) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func fastStickConfig() StickConfig {
	return StickConfig{SpeedPct: 30, CMPerSecond: 2000, TurnPct: 40, DegPerSecond: 3600}
}

func TestStickClient_MoveIsPulseThenHover(t *testing.T) {
	f := &fakeStick{connected: true}
	c := newStickClient(f, fastStickConfig(), nil)

	if err := c.Move(context.Background(), MoveLeft, 40); err != nil {
		t.Fatalf("Move: %v", err)
	}

	got := f.seen()
	if len(got) != 2 || got[0] != "left" || got[1] != "hover" {
		t.Errorf("events: got %v, want [left hover]", got)
	}
}

func TestStickClient_CancelCentersSticks(t *testing.T) {
	f := &fakeStick{connected: true}
	cfg := fastStickConfig()
	cfg.CMPerSecond = 1 // 100 cm would take 100 s
	c := newStickClient(f, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Move(ctx, MoveForward, 100)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if got := f.seen(); got[len(got)-1] != "hover" {
		t.Errorf("expected sticks centered after cancel, got %v", got)
	}
}

func TestStickClient_NotConnected(t *testing.T) {
	c := newStickClient(&fakeStick{}, fastStickConfig(), nil)

	if err := c.TakeOff(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("TakeOff: got %v, want ErrNotConnected", err)
	}
	if err := c.Rotate(context.Background(), true, 90); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Rotate: got %v, want ErrNotConnected", err)
	}
}

func TestStickClient_BatteryFromFlightData(t *testing.T) {
	c := newStickClient(&fakeStick{connected: true, battery: 64}, fastStickConfig(), nil)

	pct, err := c.Battery(context.Background())
	if err != nil || pct != 64 {
		t.Errorf("Battery: got (%d, %v), want (64, nil)", pct, err)
	}
	if err := c.Flip(context.Background(), FlipLeft); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Flip: got %v, want ErrUnsupported", err)
	}
}
