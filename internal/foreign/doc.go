// Package foreign describes the handle layer irgraph consumes from an external
// LLVM parser.
//
// A foreign Module is an opaque, handle-based view of a parsed IR module. Every
// query takes a Handle and answers a single point question ("filename of this
// handle's debug record", "is this call's callee inline assembly"). Handles are
// only valid until Module.Close; nothing outside the reconstruction pass may
// keep one.
//
// Backends:
//
//   - llirmod: pure Go, textual IR through github.com/llir/llvm.
//   - llvmc: cgo over the LLVM-C API, bitcode and textual IR (build tag llvmc).
//   - foreigntest: scripted graphs for tests.
//
// Queries are infallible for handles of the right kind. Asking a question of a
// handle of the wrong kind is a precondition violation of the caller.
package foreign
