package main

import (
	"log"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// convertFile converts one PNG into a single-image PNG-in-ICO file at
// outPath (extension forced to .ico). The source file is read twice: once
// for the header fields, once for the verbatim payload.
func convertFile(pngPath, outPath string) error {
	meta, err := readPNGHeader(pngPath)
	if err != nil {
		return err
	}
	return writeICO(outPath, meta, pngPath)
}

// outputPathFor derives the .ico path for a source PNG: next to the
// source by default, inside outDir when one is given.
func outputPathFor(pngPath, outDir string) string {
	if outDir == "" {
		return forceICOExt(pngPath)
	}
	return filepath.Join(outDir, forceICOExt(filepath.Base(pngPath)))
}

// convertAll converts each PNG in paths, reporting progress on a bar.
// A failing file is logged and skipped; the batch carries on. Returns the
// number of files that failed.
func convertAll(paths []string, outDir string, quiet bool) int {
	var progress *progressbar.ProgressBar
	if quiet {
		progress = progressbar.DefaultSilent(int64(len(paths)))
	} else {
		progress = progressbar.Default(int64(len(paths)))
	}

	failed := 0
	for _, p := range paths {
		if err := convertFile(p, outputPathFor(p, outDir)); err != nil {
			log.Printf("failed to convert %s: %v", p, err)
			failed++
		}
		_ = progress.Add(1)
	}
	_ = progress.Finish()
	return failed
}
