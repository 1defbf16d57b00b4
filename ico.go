package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const (
	icoDirSize   = 6  // ICONDIR: reserved, type, count
	icoEntrySize = 16 // ICONDIRENTRY: dims, planes, bpp, size, offset
)

// maxIcoDimension is the hard per-axis limit of the ICO directory entry:
// one unsigned byte per axis, with 0 reserved to mean 256.
const maxIcoDimension = 256

// DimensionError reports a PNG dimension the ICO format cannot encode.
type DimensionError struct {
	Axis  string // "width" or "height"
	Value uint32
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("image %s is %dpx, ICO allows at most %d", e.Axis, e.Value, maxIcoDimension)
}

// icoDimensionByte encodes a dimension for the one-byte directory entry
// field. 256 becomes 0; the caller has already rejected anything larger.
func icoDimensionByte(d uint32) byte {
	if d == maxIcoDimension {
		return 0
	}
	return byte(d)
}

// buildICO assembles a single-image PNG-in-ICO file: ICONDIR, one
// ICONDIRENTRY, then the PNG stream verbatim. Windows accepts a full PNG
// in place of a raw bitmap since Vista, so the payload is never recoded.
func buildICO(meta PNGMetadata, pngData []byte) []byte {
	buf := make([]byte, icoDirSize+icoEntrySize+len(pngData))

	// ICONDIR
	binary.LittleEndian.PutUint16(buf[0:], 0) // reserved
	binary.LittleEndian.PutUint16(buf[2:], 1) // type: ICO
	binary.LittleEndian.PutUint16(buf[4:], 1) // count: 1 image

	// ICONDIRENTRY
	off := icoDirSize
	buf[off+0] = icoDimensionByte(meta.Width)
	buf[off+1] = icoDimensionByte(meta.Height)
	buf[off+2] = 0                                // color count (0 for truecolor)
	buf[off+3] = 0                                // reserved
	binary.LittleEndian.PutUint16(buf[off+4:], 1) // planes
	// Bits per pixel copies the PNG bit depth, as the original format
	// does. For multi-channel color types this understates the true pixel
	// size (8-bit RGBA is 32bpp); readers ignore it because the embedded
	// PNG header carries the real format.
	binary.LittleEndian.PutUint16(buf[off+6:], uint16(meta.BitDepth))
	binary.LittleEndian.PutUint32(buf[off+8:], uint32(len(pngData)))     // data size
	binary.LittleEndian.PutUint32(buf[off+12:], icoDirSize+icoEntrySize) // data offset

	copy(buf[icoDirSize+icoEntrySize:], pngData)
	return buf
}

// writeICO serializes meta plus the raw bytes of pngPath as a single-image
// ICO at outPath, forcing a .ico extension. All validation and the source
// read happen before any byte is written, so a failure before the final
// write leaves nothing on disk.
func writeICO(outPath string, meta PNGMetadata, pngPath string) error {
	if meta.Width > maxIcoDimension {
		return &DimensionError{Axis: "width", Value: meta.Width}
	}
	if meta.Height > maxIcoDimension {
		return &DimensionError{Axis: "height", Value: meta.Height}
	}

	pngData, err := os.ReadFile(pngPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", pngPath, err)
	}

	target := forceICOExt(outPath)
	if err := os.WriteFile(target, buildICO(meta, pngData), 0644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// forceICOExt replaces the path's extension with .ico, or appends it when
// there is none.
func forceICOExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ".ico"
}
