// Package trace records span events for the irgraph loader.
//
// A Tracer travels through a context. Each load gets a pass span, each
// reconstructed module a module span, and each function a node span:
//
//	ctx = trace.WithTracer(ctx, tr)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "load:a.ll", 0)
//	defer span.End("")
//
// Levels gate scopes: phase keeps driver and pass spans, detail adds module
// spans, debug adds node spans. Events go to a stream (text, ndjson or the
// Chrome trace format), an in-memory ring kept for crash dumps, a zap logger,
// or any combination through MultiTracer.
package trace
