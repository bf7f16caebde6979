package foreign

// Module is a loaded foreign IR module. All handles it returns stay valid
// until Close. Implementations are not safe for concurrent use.
type Module interface {
	Name() string
	SourceFileName() string
	DataLayout() string
	TargetTriple() string

	// Globals and Functions return handles in module order.
	Globals() []Handle
	Functions() []Handle
	// Blocks returns fn's basic blocks in layout order (empty for declarations).
	Blocks(fn Handle) []Handle
	// Instructions returns bb's non-terminator instructions in order.
	Instructions(bb Handle) []Handle
	// Terminator returns bb's terminator, or NoHandle for a malformed block.
	Terminator(bb Handle) Handle

	Kind(h Handle) Kind
	Opcode(h Handle) Opcode
	// ValueName returns the name without sigil; empty for unnamed values.
	ValueName(h Handle) string
	// IsGlobalValue reports whether h names a module-level value (@name).
	IsGlobalValue(h Handle) bool
	IsDeclaration(fn Handle) bool
	Params(fn Handle) []string
	BlockName(bb Handle) string
	NumOperands(h Handle) int

	// Debug location queries. Filename and directory report false when the
	// record is absent or empty. Line and column return 0 when absent.
	DebugLocFilename(h Handle) (string, bool)
	DebugLocDirectory(h Handle) (string, bool)
	DebugLocLine(h Handle) uint32
	// DebugLocColumn is only defined for instruction and terminator handles.
	DebugLocColumn(h Handle) uint32

	// Call-shaped instructions (call, invoke, callbr).
	CalledValue(call Handle) Handle
	IsTailCall(call Handle) bool
	NumArgOperands(call Handle) int

	// Inline assembly, for handles where Kind is KindInlineAsm.
	IsInlineAsm(h Handle) bool
	InlineAsmString(h Handle) string
	InlineAsmConstraints(h Handle) string
	InlineAsmHasSideEffects(h Handle) bool
	InlineAsmCanUnwind(h Handle) bool
	InlineAsmNeedsAlignedStack(h Handle) bool
	InlineAsmDialect(h Handle) Dialect

	// Terminators.
	Successors(term Handle) []Handle
	IsConditional(br Handle) bool

	// Close releases the module. Handles are invalid afterwards.
	Close() error
}

// Loader is the opaque parse entry point of a backend.
type Loader interface {
	// LoadFile parses the module at path.
	LoadFile(path string) (Module, error)
	// LoadBytes parses data; name is used for diagnostics and as the module
	// identifier.
	LoadBytes(name string, data []byte) (Module, error)
}
