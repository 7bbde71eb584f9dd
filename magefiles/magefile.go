//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default runs vet and the tests.
var Default = All

// All runs vet and the tests.
func All() {
	mg.SerialDeps(Vet, Test)
}

// Test runs the unit tests of every package.
func Test() error {
	args := []string{"test", "./..."}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	return sh.RunV("go", args...)
}

// Bench runs the renderer benchmarks.
func Bench() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", ".")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Examples builds every example and demo into bin/.
func Examples() error {
	mg.Deps(Vet)
	var dirs []string
	for _, pattern := range []string{"examples/*", "demos/*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return err
		}
		dirs = append(dirs, matches...)
	}
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	for _, dir := range dirs {
		out := filepath.Join("bin", filepath.Base(dir))
		fmt.Println("building", dir)
		if err := sh.Run("go", "build", "-o", out, "./"+dir); err != nil {
			return fmt.Errorf("build %s: %w", dir, err)
		}
	}
	return nil
}

// Clean removes build output.
func Clean() error {
	return sh.Rm("bin")
}
