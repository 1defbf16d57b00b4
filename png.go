package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// pngSignature is the canonical 8-byte PNG magic.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ihdrLength is the fixed size of the IHDR chunk body.
const ihdrLength = 13

var (
	errBadSignature  = errors.New("not a PNG file (signature mismatch)")
	errUnknownChunk  = errors.New("unknown chunk type")
	errNotHeader     = errors.New("first chunk is not IHDR")
	errTruncatedData = errors.New("truncated data")
)

// PNGMetadata holds the 13 fields of a PNG IHDR chunk. It is a read-only
// snapshot of the on-disk bytes; nothing recomputes or mutates it after
// decoding.
type PNGMetadata struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// chunkType classifies the 4-byte ASCII chunk tags this tool recognizes.
type chunkType int

const (
	chunkHeader    chunkType = iota // IHDR
	chunkPalette                    // PLTE
	chunkImageData                  // IDAT
	chunkEnd                        // IEND
)

// parseChunkType maps a 4-byte tag to its chunkType. Tags outside the
// recognized set are an error, not a silent passthrough.
func parseChunkType(tag string) (chunkType, error) {
	switch tag {
	case "IHDR":
		return chunkHeader, nil
	case "PLTE":
		return chunkPalette, nil
	case "IDAT":
		return chunkImageData, nil
	case "IEND":
		return chunkEnd, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownChunk, tag)
}

// chunk is one length-prefixed frame of a PNG stream.
type chunk struct {
	Type chunkType
	Tag  string
	Data []byte
}

// chunkPayload is the decoded body of a chunk: header fields for IHDR,
// raw bytes for everything else.
type chunkPayload interface {
	isChunkPayload()
}

type headerPayload struct {
	Meta PNGMetadata
}

type rawPayload struct {
	Data []byte
}

func (headerPayload) isChunkPayload() {}
func (rawPayload) isChunkPayload() {}

// decodeChunk interprets a chunk body according to its tag.
func decodeChunk(c chunk) (chunkPayload, error) {
	if c.Type != chunkHeader {
		return rawPayload{Data: c.Data}, nil
	}
	meta, err := parseIHDR(c.Data)
	if err != nil {
		return nil, err
	}
	return headerPayload{Meta: meta}, nil
}

// parseIHDR decodes the 13 big-endian IHDR fields.
func parseIHDR(body []byte) (PNGMetadata, error) {
	if len(body) < ihdrLength {
		return PNGMetadata{}, fmt.Errorf("%w: IHDR body is %d bytes, need %d", errTruncatedData, len(body), ihdrLength)
	}
	return PNGMetadata{
		Width:             binary.BigEndian.Uint32(body[0:4]),
		Height:            binary.BigEndian.Uint32(body[4:8]),
		BitDepth:          body[8],
		ColorType:         body[9],
		CompressionMethod: body[10],
		FilterMethod:      body[11],
		InterlaceMethod:   body[12],
	}, nil
}

// chunkScanner walks the [length:4][tag:4][data:length][crc:4] frames of a
// PNG stream, one chunk per Scan call, stopping after IEND. CRCs are
// carried in the framing but not verified; nothing here decodes pixels.
type chunkScanner struct {
	data []byte
	off  int
	cur  chunk
	done bool
	err  error
}

// newChunkScanner verifies the PNG signature and positions the scanner at
// the first chunk.
func newChunkScanner(data []byte) (*chunkScanner, error) {
	if len(data) < len(pngSignature) {
		return nil, fmt.Errorf("%w: file is %d bytes, PNG signature needs %d", errTruncatedData, len(data), len(pngSignature))
	}
	if !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return nil, errBadSignature
	}
	return &chunkScanner{data: data, off: len(pngSignature)}, nil
}

// Scan advances to the next chunk. It returns false at IEND, at end of
// input, or on a framing error (distinguished via Err).
func (s *chunkScanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}
	if s.off == len(s.data) {
		s.done = true
		return false
	}
	if len(s.data)-s.off < 8 {
		s.err = fmt.Errorf("%w: %d bytes left at offset %d, chunk framing needs 8", errTruncatedData, len(s.data)-s.off, s.off)
		return false
	}
	length := int(binary.BigEndian.Uint32(s.data[s.off : s.off+4]))
	tag := string(s.data[s.off+4 : s.off+8])
	typ, err := parseChunkType(tag)
	if err != nil {
		s.err = err
		return false
	}
	body := s.off + 8
	if len(s.data)-body < length+4 { // body + CRC
		s.err = fmt.Errorf("%w: chunk %s declares %d data bytes, %d available", errTruncatedData, tag, length, len(s.data)-body)
		return false
	}
	s.cur = chunk{Type: typ, Tag: tag, Data: s.data[body : body+length]}
	s.off = body + length + 4
	if typ == chunkEnd {
		s.done = true
	}
	return true
}

// Chunk returns the chunk read by the last successful Scan.
func (s *chunkScanner) Chunk() chunk {
	return s.cur
}

// Err returns the first framing error hit by Scan, if any.
func (s *chunkScanner) Err() error {
	return s.err
}

// readPNGHeader reads a PNG file and decodes its IHDR metadata. Per the
// PNG spec IHDR must be the first chunk; files where it is not are
// rejected rather than searched. No pixel data is decoded.
func readPNGHeader(path string) (PNGMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PNGMetadata{}, fmt.Errorf("read %s: %w", path, err)
	}
	meta, err := parsePNGHeader(data)
	if err != nil {
		return PNGMetadata{}, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// parsePNGHeader extracts IHDR metadata from an in-memory PNG stream.
func parsePNGHeader(data []byte) (PNGMetadata, error) {
	s, err := newChunkScanner(data)
	if err != nil {
		return PNGMetadata{}, err
	}
	if !s.Scan() {
		if s.Err() != nil {
			return PNGMetadata{}, s.Err()
		}
		return PNGMetadata{}, fmt.Errorf("%w: no chunks after signature", errTruncatedData)
	}
	c := s.Chunk()
	if c.Type != chunkHeader {
		return PNGMetadata{}, fmt.Errorf("%w (got %s)", errNotHeader, c.Tag)
	}
	payload, err := decodeChunk(c)
	if err != nil {
		return PNGMetadata{}, err
	}
	return payload.(headerPayload).Meta, nil
}
