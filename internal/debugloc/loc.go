// Package debugloc reconstructs source locations from foreign debug metadata.
//
// A Loc exists for a node iff the foreign layer reports a non-empty filename
// for it. Everything with a debug record is expected to carry a filename; a
// record that has a line but no filename is treated as no record at all
// rather than as a location in an unnamed file.
package debugloc

import (
	"cmp"
	"encoding/binary"
	"hash/fnv"
	"path"
	"strconv"
	"strings"

	"irgraph/internal/opt"
)

// Loc is an owned source location of a function, global, instruction or
// terminator. Loc is comparable: == is structural equality over all fields.
type Loc struct {
	Line uint32
	// Col is present for instructions and terminators, absent for functions
	// and globals.
	Col       opt.Value[uint32]
	Filename  string
	Directory opt.Value[string]
}

// Compare orders locations by (Directory, Filename, Line, Col). Absent
// optional fields sort before present ones.
func Compare(a, b Loc) int {
	if c := opt.Compare(a.Directory, b.Directory); c != 0 {
		return c
	}
	if c := strings.Compare(a.Filename, b.Filename); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Line, b.Line); c != 0 {
		return c
	}
	return opt.Compare(a.Col, b.Col)
}

// Less reports whether a sorts before b.
func Less(a, b Loc) bool { return Compare(a, b) < 0 }

// Compare is the method form of the package-level Compare.
func (l Loc) Compare(other Loc) int { return Compare(l, other) }

// Hash returns a deterministic 64-bit hash of all four fields. Equal
// locations hash equally across processes.
func (l Loc) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte

	writeOptString(h, l.Directory)
	writeString(h, l.Filename)
	binary.LittleEndian.PutUint32(buf[:], l.Line)
	h.Write(buf[:])
	if col, ok := l.Col.Get(); ok {
		h.Write([]byte{1})
		binary.LittleEndian.PutUint32(buf[:], col)
		h.Write(buf[:])
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}

type byteWriter interface{ Write([]byte) (int, error) }

func writeString(w byteWriter, s string) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	w.Write(n[:])
	w.Write([]byte(s))
}

func writeOptString(w byteWriter, o opt.Value[string]) {
	if s, ok := o.Get(); ok {
		w.Write([]byte{1})
		writeString(w, s)
		return
	}
	w.Write([]byte{0})
}

// Path joins directory and filename unless the filename is already absolute.
func (l Loc) Path() string {
	dir, ok := l.Directory.Get()
	if !ok || dir == "" || path.IsAbs(l.Filename) {
		return l.Filename
	}
	return path.Join(dir, l.Filename)
}

// String renders path:line[:col].
func (l Loc) String() string {
	var b strings.Builder
	b.WriteString(l.Path())
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(l.Line), 10))
	if col, ok := l.Col.Get(); ok {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(col), 10))
	}
	return b.String()
}

// WithoutCol returns a copy with the column dropped.
func (l Loc) WithoutCol() Loc {
	l.Col = opt.None[uint32]()
	return l
}
