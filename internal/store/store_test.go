package store

import (
	"context"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func createResult(seq uint64, found bool) *tracker.Result {
	res := &tracker.Result{
		Seq:     seq,
		Time:    time.Date(2024, 3, 1, 12, 0, int(seq), 0, time.UTC),
		Elapsed: 2 * time.Millisecond,
	}
	if found {
		res.Lines = []detection.Line{
			detection.NewLine(69, 20, 69, 99),
			detection.NewLine(79, 20, 79, 99),
		}
		res.Target = detection.LocateTarget(res.Lines, image.Rect(0, 0, 160, 120), detection.TargetOptions{})
		res.Serial = tracker.FormatSerial(tracker.StyleTerse, res.Target)
	}
	return res
}

func TestNewReport(t *testing.T) {
	rep := NewReport(tracker.ModuleRetroTape, createResult(4, true))

	if !rep.Found || rep.Lines != 2 {
		t.Errorf("found=%v lines=%d", rep.Found, rep.Lines)
	}
	if rep.CenterX != 74 || rep.CenterY != 59 {
		t.Errorf("center = (%d,%d), want (74,59)", rep.CenterX, rep.CenterY)
	}
	if rep.StdX != -75 || rep.StdY != -13 {
		t.Errorf("std = (%d,%d), want (-75,-13)", rep.StdX, rep.StdY)
	}
	if rep.Width != 10 || rep.Height != 79 {
		t.Errorf("size = %dx%d, want 10x79", rep.Width, rep.Height)
	}
	if rep.ElapsedUS != 2000 {
		t.Errorf("ElapsedUS = %d", rep.ElapsedUS)
	}

	empty := NewReport(tracker.ModuleRetroTape, createResult(5, false))
	if empty.Found || empty.Serial != "" {
		t.Errorf("empty report = %+v", empty)
	}
}

func TestRecorder_RecordAndRecent(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()

	for seq := uint64(1); seq <= 5; seq++ {
		id, err := r.Record(ctx, NewReport(tracker.ModuleRetroTape, createResult(seq, seq%2 == 1)))
		if err != nil {
			t.Fatalf("Record error: %v", err)
		}
		if id != int64(seq) {
			t.Errorf("id = %d, want %d", id, seq)
		}
	}

	recent, err := r.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d reports, want 3", len(recent))
	}
	if recent[0].Seq != 5 || recent[2].Seq != 3 {
		t.Errorf("order = %d..%d, want 5..3", recent[0].Seq, recent[2].Seq)
	}

	got := recent[0]
	if !got.Found || got.Serial != "T2 -75 -13" || got.Module != tracker.ModuleRetroTape {
		t.Errorf("report = %+v", got)
	}
	if !got.Time.Equal(time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)) {
		t.Errorf("time = %v", got.Time)
	}
	if recent[1].Found {
		t.Error("seq 4 should have no target")
	}
}

func TestRecorder_Stats(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()

	s, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if s.Frames != 0 || s.HitRate != 0 {
		t.Errorf("empty stats = %+v", s)
	}

	for seq := uint64(1); seq <= 4; seq++ {
		if _, err := r.Record(ctx, NewReport(tracker.ModulePowerCube, createResult(seq, seq <= 3))); err != nil {
			t.Fatal(err)
		}
	}

	s, err = r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if s.Frames != 4 || s.Found != 3 {
		t.Errorf("stats = %+v", s)
	}
	if s.HitRate != 0.75 {
		t.Errorf("HitRate = %g, want 0.75", s.HitRate)
	}
	if s.AvgElapsedUS != 2000 {
		t.Errorf("AvgElapsedUS = %g, want 2000", s.AvgElapsedUS)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Record(context.Background(), NewReport("m", createResult(1, true))); err != nil {
		t.Fatal(err)
	}
	r.Close()

	r, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer r.Close()
	s, _ := r.Stats(context.Background())
	if s.Frames != 1 {
		t.Errorf("Frames after reopen = %d, want 1", s.Frames)
	}
}
