// Package prof wraps runtime profiling for long check runs.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Session holds the profilers started for one CLI invocation.
type Session struct {
	cpuFile   *os.File
	traceFile *os.File
	memPath   string
}

// Config names the output files; empty fields disable the profiler.
type Config struct {
	CPUPath   string
	MemPath   string
	TracePath string
}

// Start enables the configured profilers. Stop must be called exactly once,
// even when Start returns an error-free session with nothing enabled.
func Start(cfg Config) (*Session, error) {
	s := &Session{memPath: cfg.MemPath}

	if cfg.CPUPath != "" {
		f, err := os.Create(cfg.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}

	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			s.Stop()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.Stop()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}

	return s, nil
}

// Stop flushes and closes everything Start enabled. Safe to call twice.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	if s.traceFile != nil {
		trace.Stop()
		_ = s.traceFile.Close()
		s.traceFile = nil
	}
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = s.cpuFile.Close()
		s.cpuFile = nil
	}
	if s.memPath != "" {
		if err := writeHeap(s.memPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
		}
		s.memPath = ""
	}
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
