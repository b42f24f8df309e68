// Package display renders the tab-separated task/error listing, gating
// color on whether the output writer is a real tty.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/yarlson/rusk/internal/composer"
)

// List writes one tab-separated record per task to out, and one record
// per failed config file to errOut, sorted phony-first (every
// composer-discovered task name already is phony), then by name, then
// by path. noColor forces plain output even on a tty
// (the RUSK_NO_COLOR setting); otherwise color is applied only when out
// is a real terminal.
func List(out, errOut io.Writer, tasks []composer.TaskListEntry, errs []composer.ErrorListEntry, noColor bool) {
	name := plainFunc
	path := plainFunc
	errHeader := plainFunc
	if !noColor && isTerminal(out) {
		name = color.New(color.FgGreen, color.Bold).SprintFunc()
		path = color.New(color.FgCyan).SprintFunc()
		errHeader = color.New(color.FgRed, color.Bold).SprintFunc()
	}

	sorted := make([]composer.TaskListEntry, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Path < sorted[j].Path
	})

	for _, t := range sorted {
		if t.Description != "" {
			fmt.Fprintf(out, "%s\t%s\tin %s\n", name(t.Name), t.Description, path(t.Path))
		} else {
			fmt.Fprintf(out, "%s\t\tin %s\n", name(t.Name), path(t.Path))
		}
	}

	sortedErrs := make([]composer.ErrorListEntry, len(errs))
	copy(sortedErrs, errs)
	sort.Slice(sortedErrs, func(i, j int) bool { return sortedErrs[i].Path < sortedErrs[j].Path })

	for _, e := range sortedErrs {
		fmt.Fprintf(errOut, "%s\n\t%s\n", errHeader(e.Path), e.Message)
	}
}

func plainFunc(a ...interface{}) string {
	return fmt.Sprint(a...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
