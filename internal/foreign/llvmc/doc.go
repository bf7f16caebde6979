// Package llvmc is a foreign backend over the LLVM C API. It reads both
// textual IR and bitcode and needs LLVM 18 or newer for the inline asm
// accessors. It is compiled only with the llvmc build tag and cgo enabled:
//
//	CGO_CFLAGS=$(llvm-config --cflags) CGO_LDFLAGS="$(llvm-config --ldflags --libs core irreader)" \
//		go build -tags llvmc ./...
//
// Importing the package registers it as "llvmc".
package llvmc
