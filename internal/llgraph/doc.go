// Package llgraph is the owned, immutable typed IR graph produced by
// reconstruction.
//
// A Module owns its globals and functions; functions own their blocks; blocks
// own their instructions and terminator. Cross references (a call's callee, a
// branch target) are lookup keys resolved through the Module, never owning
// pointers, so recursive call graphs do not form ownership cycles.
//
// Nothing in this package refers to the foreign handle layer. Once built, a
// Module is safe to share between goroutines.
package llgraph
