package tracking

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/teslashibe/go-dronetrack/pkg/drone"
	"github.com/teslashibe/go-dronetrack/pkg/tracking/detection"
)

func TestComputeError_DesiredArea(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.DesiredArea(); got != 276480 {
		t.Errorf("DesiredArea: got %v, want 276480", got)
	}

	sig, err := ComputeError(detection.Box{X1: 400, Y1: 260, X2: 560, Y2: 460}, cfg.Geometry, cfg.TargetAreaFraction)
	if err != nil {
		t.Fatalf("ComputeError: %v", err)
	}
	want := ErrorSignal{ErrorX: 0, ErrorY: 0, ErrorArea: -244480, DesiredArea: 276480}
	if sig != want {
		t.Errorf("ComputeError: got %+v, want %+v", sig, want)
	}
}

func TestComputeError_Offsets(t *testing.T) {
	g := DefaultGeometry()
	// Box in the top left quadrant
	sig, err := ComputeError(detection.Box{X1: 100, Y1: 100, X2: 200, Y2: 200}, g, 0.4)
	if err != nil {
		t.Fatalf("ComputeError: %v", err)
	}
	if sig.ErrorX != 150-480 {
		t.Errorf("ErrorX: got %v, want %v", sig.ErrorX, 150-480)
	}
	if sig.ErrorY != 150-360 {
		t.Errorf("ErrorY: got %v, want %v", sig.ErrorY, 150-360)
	}
}

func TestComputeError_ZeroDesiredArea(t *testing.T) {
	box := detection.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}

	tests := []struct {
		name string
		g    FrameGeometry
		frac float64
	}{
		{"zero fraction", DefaultGeometry(), 0},
		{"zero width", FrameGeometry{Width: 0, Height: 720}, 0.4},
		{"zero height", FrameGeometry{Width: 960, Height: 0}, 0.4},
		{"negative fraction", DefaultGeometry(), -0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeError(box, tc.g, tc.frac)
			if !errors.Is(err, ErrZeroDesiredArea) {
				t.Errorf("got %v, want ErrZeroDesiredArea", err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want it to wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestPlan_FarTargetMovesForwardAtMax(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
	}{
		{"default", DefaultConfig()},
		{"aggressive", AggressiveConfig()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sig, _ := ComputeError(detection.Box{X1: 400, Y1: 260, X2: 560, Y2: 460}, tc.cfg.Geometry, tc.cfg.TargetAreaFraction)
			got := Plan(sig, &tc.cfg)
			want := []drone.Command{drone.Move(drone.MoveForward, tc.cfg.MaxStep)}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Plan: got %v, want %v", got, want)
			}
		})
	}
}

func TestPlan_CenteredAtDesiredSize(t *testing.T) {
	cfg := DefaultConfig()
	// 576x480 = 276480, centered on (480, 360)
	box := detection.Box{X1: 192, Y1: 120, X2: 768, Y2: 600}
	sig, err := ComputeError(box, cfg.Geometry, cfg.TargetAreaFraction)
	if err != nil {
		t.Fatalf("ComputeError: %v", err)
	}
	if cmds := Plan(sig, &cfg); len(cmds) != 0 {
		t.Errorf("Plan: got %v, want no commands", cmds)
	}
}

func TestPlan_Directions(t *testing.T) {
	cfg := DefaultConfig()
	dA := cfg.DesiredArea()

	tests := []struct {
		name string
		sig  ErrorSignal
		want []drone.Command
	}{
		{
			name: "target left",
			sig:  ErrorSignal{ErrorX: -100, DesiredArea: dA},
			want: []drone.Command{drone.Move(drone.MoveLeft, 25)},
		},
		{
			name: "target right",
			sig:  ErrorSignal{ErrorX: 100, DesiredArea: dA},
			want: []drone.Command{drone.Move(drone.MoveRight, 25)},
		},
		{
			name: "target above",
			sig:  ErrorSignal{ErrorY: -100, DesiredArea: dA},
			want: []drone.Command{drone.Move(drone.MoveUp, 20)},
		},
		{
			name: "target below",
			sig:  ErrorSignal{ErrorY: 100, DesiredArea: dA},
			want: []drone.Command{drone.Move(drone.MoveDown, 20)},
		},
		{
			name: "target too close",
			sig:  ErrorSignal{ErrorArea: 0.2 * dA, DesiredArea: dA},
			want: []drone.Command{drone.Move(drone.MoveBack, 50)},
		},
		{
			name: "all axes, fixed order",
			sig:  ErrorSignal{ErrorX: 200, ErrorY: -200, ErrorArea: -0.5 * dA, DesiredArea: dA},
			want: []drone.Command{
				drone.Move(drone.MoveRight, 25),
				drone.Move(drone.MoveUp, 20),
				drone.Move(drone.MoveForward, 100),
			},
		},
		{
			name: "exactly on threshold is silent",
			sig:  ErrorSignal{ErrorX: 48, ErrorY: -36, ErrorArea: 0.05 * dA, DesiredArea: dA},
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Plan(tc.sig, &cfg)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Plan: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlan_AxisIndependence(t *testing.T) {
	cfg := DefaultConfig()
	th := cfg.Thresholds()
	dA := cfg.DesiredArea()

	for _, ex := range []float64{0, th.X / 2, -th.X, th.X} {
		for _, ey := range []float64{0, 300, -300} {
			for _, ea := range []float64{0, dA, -dA} {
				sig := ErrorSignal{ErrorX: ex, ErrorY: ey, ErrorArea: ea, DesiredArea: dA}
				for _, cmd := range Plan(sig, &cfg) {
					if cmd.Kind == drone.MoveLeft || cmd.Kind == drone.MoveRight {
						t.Errorf("errorX=%v within deadband produced %v (ey=%v ea=%v)", ex, cmd, ey, ea)
					}
				}
			}
		}
	}
}

func TestDepthStep_MonotonicAndClamped(t *testing.T) {
	cfg := AggressiveConfig()
	dA := cfg.DesiredArea()
	th := cfg.Thresholds()

	prev := 0
	for i := 1; i <= 400; i++ {
		errArea := th.Area + float64(i)*dA/100
		step := DepthStep(errArea, dA, cfg.ScaleFactor, cfg.MinStep, cfg.MaxStep)
		if step < prev {
			t.Fatalf("step decreased: %d after %d at errorArea=%v", step, prev, errArea)
		}
		if step < cfg.MinStep || step > cfg.MaxStep {
			t.Fatalf("step %d outside [%d,%d]", step, cfg.MinStep, cfg.MaxStep)
		}
		prev = step
	}
	if prev != cfg.MaxStep {
		t.Errorf("large error should saturate at %d, got %d", cfg.MaxStep, prev)
	}

	// Tiny and huge errors, both signs
	for _, ea := range []float64{1e-9, -1e-9, 1, -1, 1e12, -1e12, math.MaxFloat64} {
		step := DepthStep(ea, dA, cfg.ScaleFactor, cfg.MinStep, cfg.MaxStep)
		if step < cfg.MinStep || step > cfg.MaxStep {
			t.Errorf("DepthStep(%v): %d outside [%d,%d]", ea, step, cfg.MinStep, cfg.MaxStep)
		}
	}
}

func TestDepthStep_Truncates(t *testing.T) {
	// 0.3 * 250 = 75
	if got := DepthStep(0.3*1000, 1000, 250, 20, 100); got != 75 {
		t.Errorf("DepthStep: got %d, want 75", got)
	}
	// 0.1234 * 250 = 30.85 → 30
	if got := DepthStep(123.4, 1000, 250, 20, 100); got != 30 {
		t.Errorf("DepthStep: got %d, want 30", got)
	}
}

func TestPlan_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	box := detection.Box{X1: 50, Y1: 500, X2: 250, Y2: 700}

	var first []drone.Command
	for i := 0; i < 5; i++ {
		sig, err := ComputeError(box, cfg.Geometry, cfg.TargetAreaFraction)
		if err != nil {
			t.Fatalf("ComputeError: %v", err)
		}
		got := Plan(sig, &cfg)
		if i == 0 {
			first = got
			continue
		}
		if !reflect.DeepEqual(got, first) {
			t.Errorf("tick %d: got %v, want %v", i, got, first)
		}
	}
	if len(first) != 3 {
		t.Errorf("expected a command per axis, got %v", first)
	}
}
