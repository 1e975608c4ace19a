// Package testutil builds image fixtures for the photo pipeline tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
)

// DMS is degrees, minutes and seconds as TIFF rationals (numerator, denominator).
type DMS [3][2]uint32

func Degrees(d, m, s uint32) *DMS {
	return &DMS{{d, 1}, {m, 1}, {s, 1}}
}

// GPSFixture describes the GPS IFD of a synthetic EXIF block. Nil or empty
// fields are left out of the IFD.
type GPSFixture struct {
	LatRef string
	Lat    *DMS
	LonRef string
	Lon    *DMS

	// BrokenExifPointer adds an Exif sub-IFD pointer past the end of the block.
	BrokenExifPointer bool
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	exifIFDPointer = 0x8769
	gpsInfoPointer = 0x8825

	danglingOffset = 0xFFFF0
)

// TIFF encodes the fixture as a little-endian TIFF block: IFD0 holding the
// GPS pointer, followed by the GPS IFD and its out-of-line values.
func (f GPSFixture) TIFF() []byte {
	var entries []ifdEntry
	if f.LatRef != "" {
		entries = append(entries, asciiEntry(1, f.LatRef))
	}
	if f.Lat != nil {
		entries = append(entries, rationalEntry(2, *f.Lat))
	}
	if f.LonRef != "" {
		entries = append(entries, asciiEntry(3, f.LonRef))
	}
	if f.Lon != nil {
		entries = append(entries, rationalEntry(4, *f.Lon))
	}

	le := binary.LittleEndian
	const ifd0Offset = 8
	ifd0Entries := 1
	if f.BrokenExifPointer {
		ifd0Entries++
	}
	gpsOffset := ifd0Offset + 2 + 12*ifd0Entries + 4
	dataOffset := gpsOffset + 2 + 12*len(entries) + 4

	buf := new(bytes.Buffer)
	buf.WriteString("II")
	_ = binary.Write(buf, le, uint16(42))
	_ = binary.Write(buf, le, uint32(ifd0Offset))

	_ = binary.Write(buf, le, uint16(ifd0Entries))
	if f.BrokenExifPointer {
		writeEntry(buf, exifIFDPointer, typeLong, 1, u32(danglingOffset))
	}
	writeEntry(buf, gpsInfoPointer, typeLong, 1, u32(uint32(gpsOffset)))
	_ = binary.Write(buf, le, uint32(0))

	var data bytes.Buffer
	_ = binary.Write(buf, le, uint16(len(entries)))
	for _, e := range entries {
		if len(e.value) > 4 {
			writeEntry(buf, e.tag, e.typ, e.count, u32(uint32(dataOffset+data.Len())))
			data.Write(e.value)
			continue
		}
		inline := make([]byte, 4)
		copy(inline, e.value)
		writeEntry(buf, e.tag, e.typ, e.count, inline)
	}
	_ = binary.Write(buf, le, uint32(0))
	buf.Write(data.Bytes())

	return buf.Bytes()
}

func asciiEntry(tag uint16, s string) ifdEntry {
	v := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(v)), value: v}
}

func rationalEntry(tag uint16, dms DMS) ifdEntry {
	v := make([]byte, 0, 24)
	for _, r := range dms {
		v = append(v, u32(r[0])...)
		v = append(v, u32(r[1])...)
	}
	return ifdEntry{tag: tag, typ: typeRational, count: 3, value: v}
}

func writeEntry(buf *bytes.Buffer, tag, typ uint16, count uint32, value []byte) {
	le := binary.LittleEndian
	_ = binary.Write(buf, le, tag)
	_ = binary.Write(buf, le, typ)
	_ = binary.Write(buf, le, count)
	buf.Write(value)
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// Image returns a w×h image filled with a single color.
func Image(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	return img
}

// JPEG encodes a w×h image without any metadata.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Image(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WithExif inserts tiffData as an APP1 EXIF segment right after the SOI marker.
func WithExif(jpegData, tiffData []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiffData...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))

	out := make([]byte, 0, len(jpegData)+len(seg)+len(payload))
	out = append(out, jpegData[:2]...)
	out = append(out, seg...)
	out = append(out, payload...)
	out = append(out, jpegData[2:]...)
	return out
}
