package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

func addCorpusSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata", "ir")
	if _, err := os.Stat(root); err == nil {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".ll" {
				return nil
			}
			// #nosec G304 -- path comes from repository testdata walk
			src, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			f.Add(clampSeed(src))
			return nil
		})
		if err != nil {
			f.Logf("seed walk: %v", err)
		}
	}
	// minimal inputs in case testdata is missing
	f.Add([]byte{})
	f.Add([]byte("define void @f() {\n  ret void\n}\n"))
	f.Add([]byte("define i32 @g(i32 %x) {\n  %r = call i32 asm \"bswap $0\", \"=r,r\"(i32 %x)\n  ret i32 %r\n}\n"))
	f.Add([]byte{'B', 'C', 0xC0, 0xDE})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
