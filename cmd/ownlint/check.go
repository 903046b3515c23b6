package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ownlint/internal/diag"
	"ownlint/internal/diagfmt"
	"ownlint/internal/driver"
	"ownlint/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.own|directory>",
	Short: "Check ownership and borrow rules in script files",
	Long:  `Check a single *.own script or every script under a directory for ownership, borrow and lifetime violations`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().String("ui", "auto", "interactive progress for directory runs (auto|on|off)")
	checkCmd.Flags().Bool("no-cache", false, "disable the persistent result cache")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	// Manifest supplies defaults; flags win when set.
	manifest, found, err := loadProjectManifest(startDirFor(path))
	if err != nil {
		return err
	}
	cacheEnabled := false
	if found {
		if maxDiagnostics == 0 {
			maxDiagnostics = manifest.Config.Check.MaxDiagnostics
		}
		if jobs == 0 {
			jobs = manifest.Config.Check.Jobs
		}
		cacheEnabled = manifest.Config.Check.Cache
		if manifest.Config.Check.TwoPhaseRequested && !quiet {
			fmt.Fprintf(os.Stderr, "%s: %s: [check].strict_two_phase=false has no effect\n",
				manifest.Path, diag.ProjectTwoPhaseUnsupported.ID())
		}
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Timings:        showTimings,
	}
	if cacheEnabled && !noCache {
		cache, err := driver.OpenDiskCache("ownlint")
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			}
		} else {
			opts.Cache = cache
		}
	}

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	prettyOpts := diagfmt.PrettyOpts{
		Color:     useColor,
		ShowNotes: withNotes,
		ShowFixes: suggest,
	}
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		IncludeNotes:     withNotes,
		IncludeFixes:     suggest,
	}

	var exitCode int
	if st.IsDir() {
		exitCode, err = checkDirectory(cmd, path, opts, mode, format, prettyOpts, jsonOpts, withNotes, showTimings, quiet)
	} else {
		exitCode, err = checkSingleFile(cmd, path, opts, format, prettyOpts, jsonOpts, withNotes, showTimings, quiet)
	}
	if err != nil {
		return err
	}
	if exitCode != 0 {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // diagnostics already printed
	}
	return nil
}

func checkSingleFile(cmd *cobra.Command, path string, opts driver.Options, format string, prettyOpts diagfmt.PrettyOpts, jsonOpts diagfmt.JSONOpts, withNotes, showTimings, quiet bool) (int, error) {
	fileSet, result, err := driver.CheckFile(path, opts)
	if err != nil {
		return 0, fmt.Errorf("check failed: %w", err)
	}

	if err := renderResult(format, result, fileSet, prettyOpts, jsonOpts, withNotes); err != nil {
		return 0, err
	}
	if showTimings && result.Timing != nil {
		printTiming(os.Stderr, path, result)
	}
	if !quiet && format == "pretty" && !result.Bag.HasErrors() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: clean\n", fileSet.RelPath(path))
	}

	if result.Bag.HasErrors() {
		return 1, nil
	}
	return 0, nil
}

func checkDirectory(cmd *cobra.Command, dir string, opts driver.Options, mode uiMode, format string, prettyOpts diagfmt.PrettyOpts, jsonOpts diagfmt.JSONOpts, withNotes, showTimings, quiet bool) (int, error) {
	var (
		fileSet *source.FileSet
		results []driver.CheckResult
		err     error
	)
	// The TUI only makes sense for human-readable output on a terminal.
	if format == "pretty" && shouldUseTUI(mode) {
		var files []string
		files, err = driver.ListScriptFiles(dir)
		if err != nil {
			return 0, fmt.Errorf("check failed: %w", err)
		}
		title := fmt.Sprintf("checking %s", dir)
		fileSet, results, err = runCheckDirWithUI(cmd.Context(), title, dir, files, opts)
	} else {
		fileSet, results, err = driver.CheckDir(cmd.Context(), dir, opts)
	}
	if err != nil {
		return 0, fmt.Errorf("check failed: %w", err)
	}

	exit := 0
	for i := range results {
		if results[i].Bag.HasErrors() {
			exit = 1
			break
		}
	}

	switch format {
	case "short":
		all := make([]diag.Diagnostic, 0, len(results))
		for i := range results {
			all = append(all, results[i].Bag.Items()...)
		}
		output := diag.FormatStableDiagnostics(all, fileSet, withNotes)
		if output != "" {
			fmt.Fprintln(cmd.OutOrStdout(), output)
		}
	case "pretty":
		shown := 0
		for i := range results {
			r := &results[i]
			if r.Bag.Len() == 0 {
				continue
			}
			if shown > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n", fileSet.RelPath(r.Path))
			diagfmt.Pretty(cmd.OutOrStdout(), r.Bag, fileSet, prettyOpts)
			shown++
		}
		if !quiet {
			clean := len(results) - shown
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) checked, %d clean\n", len(results), clean)
		}
	case "json":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for i := range results {
			r := &results[i]
			output[fileSet.RelPath(r.Path)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fileSet, jsonOpts)
		}
		if err := writeJSONMap(cmd.OutOrStdout(), output); err != nil {
			return 0, err
		}
	}

	if showTimings {
		for i := range results {
			if results[i].Timing != nil {
				printTiming(os.Stderr, results[i].Path, &results[i])
			}
		}
	}
	return exit, nil
}

func renderResult(format string, result *driver.CheckResult, fileSet *source.FileSet, prettyOpts diagfmt.PrettyOpts, jsonOpts diagfmt.JSONOpts, withNotes bool) error {
	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, result.Bag, fileSet, prettyOpts)
	case "short":
		output := diag.FormatStableDiagnostics(result.Bag.Items(), fileSet, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		if err := diagfmt.WriteJSON(os.Stdout, result.Bag, fileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

// startDirFor picks the manifest search root: the target directory itself,
// or the parent directory of a target file.
func startDirFor(path string) string {
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return path
	}
	return filepath.Dir(path)
}
