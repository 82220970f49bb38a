// Package audit is the degree progress engine. Given a plan, the target
// program's requirement tree and the equivalency graph, it decides which
// courses count toward which requirement and reports what remains.
//
// Everything here is synchronous and free of I/O. Callers load a Snapshot
// up front and hand it in; the engine only reads it. The single write the
// engine proposes (group auto-assignment) is returned to the caller to
// persist.
package audit
