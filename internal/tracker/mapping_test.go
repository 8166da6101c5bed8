package tracker

import "testing"

func TestParseVideoMapping(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantErr  bool
		headless bool
		def      bool
		outW     int
		camFPS   float64
	}{
		{"usb output", "YUYV 320 240 60.0 YUYV 320 240 60.0 SPORK3196 RetroTapeTracker", false, false, false, 320, 60},
		{"headless", "NONE 0 0 0.0 YUYV 320 240 30.0 SPORK3196 RetroTapeTracker", false, true, false, 0, 30},
		{"default marker", "yuyv 640 500 20 YUYV 640 480 20 SPORK3196 PowerCube *", false, false, true, 640, 20},
		{"too few fields", "YUYV 320 240 60.0 YUYV 320 240", true, false, false, 0, 0},
		{"bad width", "YUYV wide 240 60.0 YUYV 320 240 60.0 V M", true, false, false, 0, 0},
		{"bad fps", "YUYV 320 240 fast YUYV 320 240 60.0 V M", true, false, false, 0, 0},
		{"zero camera", "YUYV 320 240 60.0 YUYV 0 240 60.0 V M", true, false, false, 0, 0},
		{"zero output", "YUYV 0 0 60.0 YUYV 320 240 60.0 V M", true, false, false, 0, 0},
		{"negative", "YUYV -1 240 60.0 YUYV 320 240 60.0 V M", true, false, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseVideoMapping(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVideoMapping error: %v", err)
			}
			if m.Headless() != tt.headless {
				t.Errorf("Headless = %v, want %v", m.Headless(), tt.headless)
			}
			if m.Default != tt.def {
				t.Errorf("Default = %v, want %v", m.Default, tt.def)
			}
			if m.Output.Width != tt.outW {
				t.Errorf("Output.Width = %d, want %d", m.Output.Width, tt.outW)
			}
			if m.Camera.FPS != tt.camFPS {
				t.Errorf("Camera.FPS = %g, want %g", m.Camera.FPS, tt.camFPS)
			}
		})
	}
}

func TestVideoMapping_String(t *testing.T) {
	line := "YUYV 640 500 20 YUYV 640 480 20.5 SPORK3196 PowerCube *"
	m, err := ParseVideoMapping(line)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.String(); got != line {
		t.Errorf("String = %q, want %q", got, line)
	}
	if m.Vendor != "SPORK3196" || m.Module != "PowerCube" {
		t.Errorf("vendor/module = %q/%q", m.Vendor, m.Module)
	}
}
