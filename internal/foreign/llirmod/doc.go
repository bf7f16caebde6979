// Package llirmod is the default foreign backend. It parses textual LLVM IR
// with github.com/llir/llvm and serves the parsed objects through opaque
// handles. Importing the package registers it as "llir".
package llirmod
