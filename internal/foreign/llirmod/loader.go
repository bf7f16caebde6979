package llirmod

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/llir/llvm/asm"

	"irgraph/internal/foreign"
)

// Name is the registry name of this backend.
const Name = "llir"

func init() {
	foreign.Register(Name, Loader{})
}

// bitcodeMagic prefixes raw LLVM bitcode ("BC\xC0\xDE").
var bitcodeMagic = []byte{'B', 'C', 0xC0, 0xDE}

// ErrBitcode is returned for bitcode input, which this backend cannot read.
var ErrBitcode = errors.New("llir backend reads textual IR only; use the llvmc backend for bitcode")

var unwindKeyword = []byte("unwind")

// Loader parses textual .ll modules.
type Loader struct{}

// LoadFile reads and parses path.
func (Loader) LoadFile(path string) (foreign.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Loader{}.LoadBytes(path, data)
}

// LoadBytes parses data as textual IR.
func (Loader) LoadBytes(name string, data []byte) (mod foreign.Module, err error) {
	if bytes.HasPrefix(data, bitcodeMagic) {
		return nil, ErrBitcode
	}
	// the parser panics on some malformed inputs instead of erroring
	defer func() {
		if r := recover(); r != nil {
			mod, err = nil, fmt.Errorf("parse %s: %v", name, r)
		}
	}()
	src := string(data)
	m, err := asm.ParseString(name, src)
	if err != nil {
		return nil, err
	}
	lm := newModule(name, m)
	if bytes.Contains(data, unwindKeyword) {
		if lm.unwind, err = unwindSet(name, src, m); err != nil {
			return nil, err
		}
	}
	return lm, nil
}
