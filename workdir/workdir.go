// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package workdir provides the working directory
// of an analysis run.
//
// A working directory owns every file
// generated while driving the inference program
// (alignment, scripts, trees, score files and logs).
// It is exclusively owned by a single run,
// held for the whole lifetime of the run,
// and released with an explicit Close call
// on every exit path.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// A Dir is the working directory of a run.
type Dir struct {
	path string
	keep bool
}

// New creates a working directory.
// If path is empty,
// a fresh temporary directory is created
// and removed on Close.
// If path is given,
// the directory is created if needed
// and always kept on Close.
func New(path string) (*Dir, error) {
	if path == "" {
		p, err := os.MkdirTemp("", "phydecay_")
		if err != nil {
			return nil, err
		}
		return &Dir{path: p}, nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Dir{path: path, keep: true}, nil
}

// NewTimestamped creates a kept working directory
// under the given parent,
// named with the current time,
// so several runs can live side by side.
func NewTimestamped(parent string) (*Dir, error) {
	name := fmt.Sprintf("phydecay_%s", time.Now().Format("20060102_150405"))
	return New(filepath.Join(parent, name))
}

// Path returns the absolute location of a named file
// inside the working directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name)
}

// Name returns the location of the working directory.
func (d *Dir) Name() string {
	return d.path
}

// Keep marks the working directory
// to be preserved on Close.
func (d *Dir) Keep() {
	d.keep = true
}

// Kept returns true if the working directory
// will be preserved on Close.
func (d *Dir) Kept() bool {
	return d.keep
}

// WriteFile writes a named file
// inside the working directory.
func (d *Dir) WriteFile(name string, data []byte) error {
	return os.WriteFile(d.Path(name), data, 0644)
}

// HasFile returns true if a named file exists
// inside the working directory
// and is not empty.
func (d *Dir) HasFile(name string) bool {
	fi, err := os.Stat(d.Path(name))
	if err != nil {
		return false
	}
	return fi.Size() > 0
}

// CopyFile copies an external file
// into the working directory
// under the given name.
func (d *Dir) CopyFile(name, src string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return d.WriteFile(name, data)
}

// Cleanup removes intermediate files
// not needed for the final output
// (constraint trees and site likelihood files).
// It is a no-op on a kept directory.
func (d *Dir) Cleanup() {
	if d.keep {
		return
	}
	for _, pattern := range []string{
		"constraint_tree_*.tre",
		"site_lnl_*.txt",
	} {
		files, err := filepath.Glob(filepath.Join(d.path, pattern))
		if err != nil {
			continue
		}
		for _, f := range files {
			os.Remove(f)
		}
	}
}

// Close releases the working directory.
// A temporary directory is removed with all its content;
// a kept directory is left in place.
// Close must be called on every exit path of a run.
func (d *Dir) Close() error {
	if d.keep {
		return nil
	}
	return os.RemoveAll(d.path)
}
