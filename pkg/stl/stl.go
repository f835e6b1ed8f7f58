// Package stl decodes STL triangle-soup surfaces, both binary and ASCII.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/Faultbox/stlview/pkg/math"
)

// STL format errors.
var (
	ErrTruncated    = errors.New("truncated STL data")
	ErrInvalidASCII = errors.New("invalid ASCII STL")
)

const (
	headerSize = 80
	recordSize = 50 // normal + 3 vertices (12 float32) + u16 attribute
)

// Format identifies the STL encoding of a surface.
type Format int

// Known encodings.
const (
	FormatBinary Format = iota
	FormatASCII
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatASCII:
		return "ascii"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Face is one triangle of the soup: its stored normal and three corners.
type Face struct {
	Normal   math.Vec3
	Vertices [3]math.Vec3
	Attr     uint16 // binary attribute byte count, zero for ASCII
}

// Surface is a parsed STL file.
type Surface struct {
	Format Format
	// Name is the ASCII solid name, or the trimmed binary header.
	Name  string
	Faces []Face
}

// Bounds returns the axis-aligned bounding box of all vertices.
// ok is false for a surface without faces.
func (s *Surface) Bounds() (lo, hi math.Vec3, ok bool) {
	if len(s.Faces) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	lo = s.Faces[0].Vertices[0]
	hi = lo
	for _, f := range s.Faces {
		for _, v := range f.Vertices {
			lo = lo.Min(v)
			hi = hi.Max(v)
		}
	}
	return lo, hi, true
}

// Parse decodes an STL surface from raw bytes.
// Binary files whose header happens to start with "solid" are recognized by
// their size. When trailing bytes follow the last binary record, a "solid"
// file is read as ASCII only if that yields at least one facet.
func Parse(data []byte) (*Surface, error) {
	solid := hasSolidPrefix(data)
	if len(data) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(data[headerSize:])
		want := headerSize + 4 + uint64(count)*recordSize
		size := uint64(len(data))
		switch {
		case size == want, size > want && !solid:
			return parseBinary(data, int(count))
		case size > want:
			if s, err := parseASCII(data); err == nil && len(s.Faces) > 0 {
				return s, nil
			}
			return parseBinary(data, int(count))
		case !solid:
			have := (size - headerSize - 4) / recordSize
			return nil, fmt.Errorf("%w: %d of %d triangles", ErrTruncated, have, count)
		}
	}
	if solid {
		return parseASCII(data)
	}
	return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
}

// Decode reads all of r and parses it as STL.
func Decode(r io.Reader) (*Surface, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ParseFile parses an STL file from disk.
func ParseFile(path string) (*Surface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func hasSolidPrefix(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) >= 5 && strings.EqualFold(string(trimmed[:5]), "solid")
}

func parseBinary(data []byte, count int) (*Surface, error) {
	s := &Surface{
		Format: FormatBinary,
		Name:   headerName(data[:headerSize]),
		Faces:  make([]Face, count),
	}

	body := data[headerSize+4:]
	for i := range s.Faces {
		rec := body[i*recordSize : (i+1)*recordSize]
		f := &s.Faces[i]
		f.Normal = readVec3(rec[0:])
		f.Vertices[0] = readVec3(rec[12:])
		f.Vertices[1] = readVec3(rec[24:])
		f.Vertices[2] = readVec3(rec[36:])
		f.Attr = binary.LittleEndian.Uint16(rec[48:])
	}
	return s, nil
}

// headerName returns the binary header as text. Headers are free-form bytes;
// anything that is not UTF-8 is read as Windows-1252, which most exporters
// that put text there use.
func headerName(header []byte) string {
	header = bytes.TrimRight(header, " \x00")
	if utf8.Valid(header) {
		return string(header)
	}
	name, err := charmap.Windows1252.NewDecoder().Bytes(header)
	if err != nil {
		return strings.ToValidUTF8(string(header), "?")
	}
	return string(name)
}

func readVec3(b []byte) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

// asciiParser walks an ASCII STL token by token.
type asciiParser struct {
	sc   *bufio.Scanner
	line int
}

func parseASCII(data []byte) (*Surface, error) {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return nil, fmt.Errorf("%w: NUL byte at offset %d", ErrInvalidASCII, i)
	}
	p := &asciiParser{sc: bufio.NewScanner(bytes.NewReader(data))}
	p.sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	toks, err := p.next()
	if err != nil {
		return nil, err
	}
	if !keyword(toks, "solid") {
		return nil, p.errorf("expected 'solid'")
	}
	s := &Surface{Format: FormatASCII, Name: strings.Join(toks[1:], " ")}

	for {
		toks, err := p.next()
		if err != nil {
			return nil, p.eof(err)
		}
		switch {
		case keyword(toks, "endsolid"):
			return s, nil
		case keyword(toks, "facet"):
			f, err := p.facet(toks)
			if err != nil {
				return nil, err
			}
			s.Faces = append(s.Faces, f)
		default:
			return nil, p.errorf("unexpected %q", toks[0])
		}
	}
}

// facet parses "facet normal ..." through "endfacet".
func (p *asciiParser) facet(head []string) (Face, error) {
	var f Face
	if len(head) != 5 || !strings.EqualFold(head[1], "normal") {
		return f, p.errorf("malformed facet line")
	}
	n, err := p.vec3(head[2:])
	if err != nil {
		return f, err
	}
	f.Normal = n

	if err := p.expect("outer", "loop"); err != nil {
		return f, err
	}
	for i := range f.Vertices {
		toks, err := p.next()
		if err != nil {
			return f, p.eof(err)
		}
		if len(toks) != 4 || !keyword(toks, "vertex") {
			return f, p.errorf("expected 'vertex x y z'")
		}
		if f.Vertices[i], err = p.vec3(toks[1:]); err != nil {
			return f, err
		}
	}
	if err := p.expect("endloop"); err != nil {
		return f, err
	}
	if err := p.expect("endfacet"); err != nil {
		return f, err
	}
	return f, nil
}

func (p *asciiParser) expect(words ...string) error {
	toks, err := p.next()
	if err != nil {
		return p.eof(err)
	}
	if len(toks) != len(words) {
		return p.errorf("expected %q", strings.Join(words, " "))
	}
	for i, w := range words {
		if !strings.EqualFold(toks[i], w) {
			return p.errorf("expected %q", strings.Join(words, " "))
		}
	}
	return nil
}

func (p *asciiParser) vec3(toks []string) (math.Vec3, error) {
	var c [3]float32
	for i, tok := range toks {
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return math.Vec3{}, p.errorf("bad number %q", tok)
		}
		c[i] = float32(v)
	}
	return math.V3(c), nil
}

// next returns the fields of the next non-blank line.
func (p *asciiParser) next() ([]string, error) {
	for p.sc.Scan() {
		p.line++
		if toks := strings.Fields(p.sc.Text()); len(toks) > 0 {
			return toks, nil
		}
	}
	if err := p.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (p *asciiParser) eof(err error) error {
	if err == io.EOF {
		return fmt.Errorf("%w: unexpected end of data", ErrTruncated)
	}
	return err
}

func (p *asciiParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidASCII, p.line, fmt.Sprintf(format, args...))
}

func keyword(toks []string, word string) bool {
	return len(toks) > 0 && strings.EqualFold(toks[0], word)
}
