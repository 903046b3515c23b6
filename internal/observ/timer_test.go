package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReportAggregatesPhases(t *testing.T) {
	tm := NewTimer()
	parse := tm.Begin("parse")
	time.Sleep(time.Millisecond)
	tm.End(parse, "12 ops")
	check := tm.Begin("check")
	tm.End(check, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[1].Name != "check" {
		t.Fatalf("unexpected phase order %q %q", report.Phases[0].Name, report.Phases[1].Name)
	}
	if report.Phases[0].Note != "12 ops" {
		t.Fatalf("unexpected note %q", report.Phases[0].Note)
	}
	if report.Phases[0].DurationMS <= 0 {
		t.Fatalf("expected positive parse duration, got %v", report.Phases[0].DurationMS)
	}
	sum := report.Phases[0].DurationMS + report.Phases[1].DurationMS
	if report.TotalMS != sum {
		t.Fatalf("total %v does not match phase sum %v", report.TotalMS, sum)
	}
}

func TestTimerEndOutOfRangeIsNoop(t *testing.T) {
	tm := NewTimer()
	tm.End(-1, "nope")
	tm.End(3, "nope")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("expected empty report, got %d phases", len(got.Phases))
	}
}

func TestEmptyTimerReport(t *testing.T) {
	tm := NewTimer()
	report := tm.Report()
	if report.TotalMS != 0 || report.Phases != nil {
		t.Fatalf("expected zero report, got %+v", report)
	}
}

func TestSummaryListsPhasesAndTotal(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")

	out := tm.Summary()
	if !strings.Contains(out, "load") {
		t.Fatalf("summary missing phase name:\n%s", out)
	}
	if !strings.Contains(out, "// 3 files") {
		t.Fatalf("summary missing note:\n%s", out)
	}
	if !strings.Contains(out, "total") {
		t.Fatalf("summary missing total line:\n%s", out)
	}
}
