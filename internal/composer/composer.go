// Package composer discovers and merges rusk.toml / .rusk.toml files
// under a root: every discovered file is loaded in its own goroutine,
// per-file failures are recorded without aborting the scan, and the
// composer exposes listing and
// convert-to-task-map views once draining is complete.
package composer

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/yarlson/rusk/internal/normpath"
	"github.com/yarlson/rusk/internal/ruskerr"
	"github.com/yarlson/rusk/internal/taskdef"
	"github.com/yarlson/rusk/internal/taskkey"
	"github.com/yarlson/rusk/internal/walk"
)

var phonyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

type fileResult struct {
	raw *taskdef.RawFile
	err error
}

// Composer collects the Ruskfiles discovered under one or more walked
// roots. Create one with New; the zero value has no results map and is
// not ready to use.
type Composer struct {
	mu      sync.Mutex
	results map[string]fileResult
}

// New creates an empty Composer.
func New() *Composer {
	return &Composer{results: make(map[string]fileResult)}
}

// WalkDir traverses root with the VCS-aware walker (internal/walk),
// loading every discovered rusk.toml / .rusk.toml in its own goroutine.
// If ctx is cancelled (e.g. by a SCAN_TIMEOUT deadline) before the scan
// finishes, the whole walk is abandoned and a WalkTimeoutError is
// returned; results already recorded are left in place but no further
// waiting occurs.
func (c *Composer) WalkDir(ctx context.Context, root string) error {
	var wg sync.WaitGroup
	done := make(chan struct{})

	go func() {
		_ = walk.Walk(root, walk.IsRuskfile, func(path string) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.load(path)
			}()
		})
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return &ruskerr.WalkTimeoutError{Root: root}
	}
}

func (c *Composer) load(path string) {
	raw, err := loadFile(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[path] = fileResult{raw: raw, err: err}
}

func loadFile(path string) (*taskdef.RawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return taskdef.ParseRawFile(data)
}

// TaskListEntry is one record of Composer.TasksList.
type TaskListEntry struct {
	Name        string
	Description string
	Path        string
}

// TasksList returns one entry per task across every successfully loaded
// file, sorted for the listing view: phony first (always true here,
// since config-file task names are always phony), then by name, then
// by path.
func (c *Composer) TasksList() []TaskListEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []TaskListEntry
	for path, res := range c.results {
		if res.err != nil || res.raw == nil {
			continue
		}
		for name, task := range res.raw.Tasks {
			entries = append(entries, TaskListEntry{
				Name:        name,
				Description: task.Description,
				Path:        path,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// ErrorListEntry is one record of Composer.ErrorsList.
type ErrorListEntry struct {
	Path    string
	Message string
}

// ErrorsList returns one entry per file that failed to load, sorted by
// path for deterministic output.
func (c *Composer) ErrorsList() []ErrorListEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []ErrorListEntry
	for path, res := range c.results {
		if res.err == nil {
			continue
		}
		entries = append(entries, ErrorListEntry{Path: path, Message: res.err.Error()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// TryIntoTaskMap consumes the composer, producing the merged
// map<TaskKey, TaskDef> of every successfully loaded task. Files that
// failed to load are skipped (not fatal for the conversion). A task name defined
// in more than one file is a fatal DuplicateTaskKeyError. The returned
// global envs table is the union of every file's top-level [envs] table,
// files later in sorted path order overriding earlier ones.
func (c *Composer) TryIntoTaskMap() (map[taskkey.Key]taskdef.TaskDef, map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.results))
	for path, res := range c.results {
		if res.err == nil && res.raw != nil {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	taskMap := make(map[taskkey.Key]taskdef.TaskDef)
	globalEnvs := make(map[string]string)

	for _, path := range paths {
		res := c.results[path]
		dir, err := normpath.Normalize(filepath.Dir(path), nil)
		if err != nil {
			return nil, nil, err
		}

		for k, v := range res.raw.Envs {
			globalEnvs[k] = v
		}

		names := make([]string, 0, len(res.raw.Tasks))
		for name := range res.raw.Tasks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if !phonyPattern.MatchString(name) {
				return nil, nil, &ruskerr.InvalidTaskKeyError{
					Literal: name,
					Reason:  "task names must match ^[A-Za-z][A-Za-z0-9_-]*$",
				}
			}
			key := taskkey.Phony(name)
			if _, exists := taskMap[key]; exists {
				return nil, nil, &ruskerr.DuplicateTaskKeyError{Key: key.String()}
			}
			def, err := res.raw.Tasks[name].Resolve(dir)
			if err != nil {
				return nil, nil, err
			}
			taskMap[key] = def
		}
	}

	return taskMap, globalEnvs, nil
}
