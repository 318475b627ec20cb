// Package trace provides execution tracing for the interpreter, in the
// style of a small debug log rather than a full profiler. Tracing is off
// unless a tracer is built with enabled set.
package trace

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// Tracer writes one line per dispatched instruction when enabled, gated
// by an optional glob filter over opcode mnemonics.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New builds a tracer writing to w, filtered by the given glob patterns
// (e.g. "CALL*"). No patterns means every instruction is traced.
func New(enabled bool, filters []string, w io.Writer) *Tracer {
	return &Tracer{enabled: enabled, filters: filters, writer: w}
}

// Noop returns a disabled tracer, the default for an interpreter that
// was never told to trace.
func Noop() *Tracer {
	return &Tracer{enabled: false}
}

func (t *Tracer) matches(mnemonic string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, mnemonic); matched {
			return true
		}
	}
	return false
}

// Instruction logs one dispatched instruction: its byte offset, opcode
// mnemonic, and the evaluation stack depth at dispatch time.
func (t *Tracer) Instruction(offset int, mnemonic string, stackDepth int) {
	if !t.enabled || !t.matches(mnemonic) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] %6d %-14s sp=%d\n", offset, mnemonic, stackDepth)
}

// Call logs a CallFn dispatch.
func (t *Tracer) Call(name string, argc int) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE]   CALL %s argc=%d\n", name, argc)
}

// Return logs a RetFn dispatch.
func (t *Tracer) Return(name string) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE]   RETURN %s\n", name)
}
