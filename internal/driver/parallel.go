package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"datemark/internal/diag"
	"datemark/internal/source"
)

// listSourceFiles returns a sorted list of files under dir whose extension
// matches one of exts.
func listSourceFiles(dir string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted for a deterministic processing and output order.
	sort.Strings(files)
	return files, nil
}

// ExpandDir expands every matching file under dir in parallel. Results come
// back in sorted path order regardless of scheduling. Files that fail to
// load are reported as an error diagnostic in their result rather than
// aborting the whole run.
func ExpandDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, error) {
	opts = opts.normalized()

	files, err := listSourceFiles(dir, opts.Extensions)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return source.NewFileSetWithBase(dir), nil, nil
	}

	// FileSet is not synchronized: preload every file up front, then fan
	// out over the immutable set.
	fileSet := source.NewFileSetWithBase(dir)
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			// A virtual placeholder keeps a FileID to hang the IO
			// diagnostic on.
			loadErrors[path] = err
			fileIDs[path] = fileSet.AddVirtual(path, nil)
			continue
		}
		fileIDs[path] = fileID
	}

	// Indices are unique per goroutine, so no mutex around results.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadError := loadErrors[path]; hadError {
				results[i] = *ioFailureResult(fileIDs[path], path, loadErr, opts)
				return nil
			}

			result := expandLoaded(fileSet, fileIDs[path], path, opts)
			if err := commit(fileSet, result, opts); err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func ioFailureResult(fileID source.FileID, path string, err error, opts Options) *FileResult {
	bag := diag.NewBag(opts.MaxDiagnostics)
	bag.Add(diag.NewError(diag.IOReadFail, source.Span{File: fileID},
		fmt.Sprintf("failed to read %s: %v", path, err)))
	return &FileResult{Path: path, FileID: fileID, Bag: bag}
}
