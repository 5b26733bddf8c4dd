package ecs

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Location is the call site that sent or triggered an event.
// The zero value means the call site is unknown.
type Location struct {
	File string
	Line int
}

// Known reports whether the location was captured.
func (l Location) Known() bool {
	return l.File != "" && l.Line > 0
}

func (l Location) String() string {
	if !l.Known() {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// caller returns the location skip frames above its own caller, keeping the
// last directory and the file name ("foo/foo.go").
func caller(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	dir := filepath.Base(filepath.Dir(file))
	return Location{File: filepath.ToSlash(filepath.Join(dir, filepath.Base(file))), Line: line}
}
