package main

import (
	"encoding/json"
	"fmt"
	"io"

	"ownlint/internal/diagfmt"
	"ownlint/internal/driver"
)

func printTiming(out io.Writer, path string, result *driver.CheckResult) {
	if out == nil || result.Timing == nil {
		return
	}
	if result.CacheHit {
		fmt.Fprintf(out, "%s: cache hit\n", path)
		return
	}
	for _, phase := range result.Timing.Phases {
		fmt.Fprintf(out, "%s: %s %.1f ms\n", path, phase.Name, phase.DurationMS)
	}
	fmt.Fprintf(out, "%s: total %.1f ms\n", path, result.Timing.TotalMS)
}

func writeJSONMap(out io.Writer, output map[string]diagfmt.DiagnosticsOutput) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode diagnostics output: %w", err)
	}
	return nil
}
