// Package driver orchestrates the analysis pipeline: load script files,
// parse them into operation programs, run the ownership checker and collect
// diagnostics per file.
package driver

import (
	"errors"
	"fmt"

	"ownlint/internal/bindings"
	"ownlint/internal/check"
	"ownlint/internal/diag"
	"ownlint/internal/observ"
	"ownlint/internal/ops"
	"ownlint/internal/script"
	"ownlint/internal/source"
)

// Options configures a driver run.
type Options struct {
	MaxDiagnostics int
	Jobs           int          // parallel workers for directory runs, 0 = GOMAXPROCS
	Cache          *DiskCache   // nil disables caching
	Events         chan<- Event // progress updates for directory runs, may be nil
	Timings        bool
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// CheckResult is the outcome of analyzing one script file.
type CheckResult struct {
	Path     string
	FileID   source.FileID
	Program  *ops.Program
	Check    *check.Result
	Bag      *diag.Bag
	Timing   *observ.Report
	CacheHit bool
}

// CheckFile loads and analyzes a single script file.
func CheckFile(path string, opts Options) (*source.FileSet, *CheckResult, error) {
	fileSet := source.NewFileSet()
	fileID, err := fileSet.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	result, err := checkLoaded(fileSet, fileID, path, opts)
	if err != nil {
		return nil, nil, err
	}
	return fileSet, result, nil
}

// CheckSource analyzes in-memory content under a virtual file name.
func CheckSource(name string, content []byte, opts Options) (*source.FileSet, *CheckResult, error) {
	fileSet := source.NewFileSet()
	fileID := fileSet.AddVirtual(name, content)
	result, err := checkLoaded(fileSet, fileID, name, opts)
	if err != nil {
		return nil, nil, err
	}
	return fileSet, result, nil
}

func checkLoaded(fileSet *source.FileSet, fileID source.FileID, path string, opts Options) (*CheckResult, error) {
	file := fileSet.Get(fileID)
	bag := diag.NewBag(opts.maxDiagnostics())

	if payload, ok := cacheLookup(opts.Cache, file); ok {
		payload.fill(bag, fileID)
		bag.Sort()
		return &CheckResult{
			Path:     path,
			FileID:   fileID,
			Bag:      bag,
			CacheHit: true,
		}, nil
	}

	timer := observ.NewTimer()
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	phase := timer.Begin("parse")
	prog := script.Parse(file, reporter)
	timer.End(phase, fmt.Sprintf("%d ops", prog.Len()))

	phase = timer.Begin("check")
	res, err := check.Run(prog, check.Options{Reporter: reporter})
	timer.End(phase, "")
	if err != nil {
		// An undeclared binding is a script author's mistake, surfaced as a
		// diagnostic rather than crashing the whole run.
		if errors.Is(err, bindings.ErrUnknownBinding) {
			bag.Add(diag.NewError(diag.CheckUnknownBinding, source.Span{File: fileID}, err.Error()))
			res = &check.Result{}
		} else {
			return nil, err
		}
	}

	bag.Sort()
	cacheStore(opts.Cache, file, bag)

	report := timer.Report()
	return &CheckResult{
		Path:    path,
		FileID:  fileID,
		Program: prog,
		Check:   res,
		Bag:     bag,
		Timing:  &report,
	}, nil
}
