//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// inputPDFs returns the PDFs under input/, or an error when there are none.
func inputPDFs() ([]string, error) {
	pdfs, err := filepath.Glob(filepath.Join("input", "*.pdf"))
	if err != nil {
		return nil, err
	}
	if len(pdfs) == 0 {
		return nil, fmt.Errorf("no PDFs in input/; run mage init and copy documents there")
	}
	return pdfs, nil
}

// Convert writes layout Markdown and debug overlays for every PDF in input/.
func Convert() error {
	mg.Deps(Build)
	pdfs, err := inputPDFs()
	if err != nil {
		return err
	}
	args := append([]string{"convert", "--markdown-only", "--force",
		"--markdown-dir", "output/markdown",
		"--debug-images", "--debug-dir", "output/debug",
	}, pdfs...)
	return sh.RunV(binPath, args...)
}

// Analyze converts every PDF in input/ and writes one result envelope per
// document to output/.
func Analyze() error {
	mg.Deps(Build)
	pdfs, err := inputPDFs()
	if err != nil {
		return err
	}
	args := append([]string{"convert",
		"--markdown-dir", "output/markdown",
		"--output-dir", "output",
	}, pdfs...)
	return sh.RunV(binPath, args...)
}
