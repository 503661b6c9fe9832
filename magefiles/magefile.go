//go:build mage

// Package main contains Mage build targets for pmc-pages developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"pdfs",
	"imgs",
	".pmc-pages",
}

// Init creates the working directories and an empty identifier list.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat("pmc_ids.txt"); os.IsNotExist(err) {
		if err := os.WriteFile("pmc_ids.txt", nil, 0o644); err != nil {
			return fmt.Errorf("creating pmc_ids.txt: %w", err)
		}
		fmt.Println("   pmc_ids.txt")
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "pmc-pages"
	cmdPkg  = "./cmd/pmc-pages"
)

// binPath is where Build writes the CLI.
var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the binary and the run ledger. Downloaded PDFs and images
// are kept.
func Clean() error {
	for _, p := range []string{binDir, ".pmc-pages"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports whether a directory holds pipeline output or reference
// material rather than project sources.
func skipDir(name string) bool {
	switch name {
	case ".git", "pdfs", "imgs", ".pmc-pages", binDir:
		return true
	}
	return strings.HasPrefix(name, "_")
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts words in the Markdown files under root.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}

// Pipeline groups targets that build the CLI and run one stage.
type Pipeline mg.Namespace

// Check verifies the external tools and the ImageMagick policy.
func (Pipeline) Check() error { return runStage("check") }

// Fetch downloads the PDFs listed in pmc_ids.txt.
func (Pipeline) Fetch() error { return runStage("fetch") }

// Render converts downloaded PDFs to page images.
func (Pipeline) Render() error { return runStage("render") }

// Normalize renames page images to their final names.
func (Pipeline) Normalize() error { return runStage("normalize") }

// All runs every stage.
func (Pipeline) All() error { return runStage("run") }

// Status prints the latest run summary.
func (Pipeline) Status() error { return runStage("status") }

func runStage(stage string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, stage)
}
