package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ownlint/internal/diag"
	"ownlint/internal/source"
)

// ScriptExt is the extension the directory walker picks up.
const ScriptExt = ".own"

// ListScriptFiles returns the sorted list of all script files under dir.
func ListScriptFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ScriptExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Deterministic order regardless of filesystem iteration.
	sort.Strings(files)
	return files, nil
}

// CheckDir analyzes every script file under dir in parallel. Results come
// back in the same order as the sorted file list; a file that fails to load
// yields a result with an IO diagnostic instead of aborting the run.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []CheckResult, error) {
	files, err := ListScriptFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Preload sequentially: the FileSet is not safe for concurrent writes.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index; no mutex needed.
	results := make([]CheckResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(opts.maxDiagnostics())
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()))
				results[i] = CheckResult{Path: path, Bag: bag}
				emit(opts.Events, Event{Path: path, Status: StatusError})
				return nil
			}

			emit(opts.Events, Event{Path: path, Status: StatusChecking})
			res, err := checkLoaded(fileSet, fileIDs[path], path, opts)
			if err != nil {
				emit(opts.Events, Event{Path: path, Status: StatusError})
				return err
			}
			results[i] = *res
			status := StatusClean
			if res.Bag.HasErrors() {
				status = StatusIssues
			}
			emit(opts.Events, Event{Path: path, Status: status, Issues: res.Bag.Len()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fileSet, results, nil
}
