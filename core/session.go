package core

import (
	"context"
	"strings"
	"sync"

	"pkt.systems/gdbx/schema"
	"pkt.systems/pslog"
)

// Fixed command strings of the derived protocol.
const (
	cmdProgramStatus = "info program"
	cmdSourceList    = "list"
	cmdAssemblyList  = "disassemble"
	cmdLocals        = "info locals"
	cmdParams        = "info args"
	cmdListSize      = "show listsize"
	cmdCurrentLine   = "info line"

	// CommandQuit terminates the debugger child.
	CommandQuit = "quit"

	// notRunningMarker appears in the status reply exactly when no program
	// is being debugged. Plain prose, brittle across gdb versions and
	// locales; the protocol depends on it.
	notRunningMarker = "not being run"
)

// Channel is the write side of the debugger process.
type Channel interface {
	Write(line string) error
	Alive() bool
	Shutdown() error
}

// Drainer collects one prompt-terminated reply from the child.
type Drainer interface {
	DrainUntilPrompt(ctx context.Context, trimPrompt bool) (outputText, errorText string, err error)
}

// Session serializes access to one debugger child and caches the derived
// running-program fact. The request/response protocol is strictly
// synchronous and non-pipelined; the mutex enforces single-flight use.
type Session struct {
	mu      sync.Mutex
	ch      Channel
	reader  Drainer
	log     pslog.Logger
	running bool
	dirty   bool
}

// NewSession wraps a spawned debugger channel.
func NewSession(ch Channel, reader Drainer, logger pslog.Logger) *Session {
	return &Session{ch: ch, reader: reader, log: logger}
}

// Alive reports whether the debugger child is still running.
func (s *Session) Alive() bool {
	return s.ch.Alive()
}

// Execute writes a command to the debugger and marks the running-state
// cache dirty. Empty commands are ignored; a dead child yields ErrNotAlive.
func (s *Session) Execute(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeLocked(command)
}

// Run executes a command and collects the full prompt-terminated reply,
// surfacing both output and diagnostic text. This is the primary execution
// path for front ends.
func (s *Session) Run(ctx context.Context, command string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if command == "" {
		return "", "", nil
	}
	if err := s.executeLocked(command); err != nil {
		return "", "", err
	}
	return s.reader.DrainUntilPrompt(ctx, true)
}

// WaitReady drains the debugger greeting up to the first prompt.
func (s *Session) WaitReady(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader.DrainUntilPrompt(ctx, true)
}

// RunningProgram reports whether a debuggee is active. The fact is cached
// and recomputed only after an intervening Execute or Run, so back-to-back
// calls cost at most one status round-trip.
func (s *Session) RunningProgram(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked(ctx)
}

// Query runs an informational command and returns its output with the
// prompt trimmed. Diagnostic text is discarded; use Run where error
// visibility matters.
func (s *Session) Query(ctx context.Context, command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(ctx, command)
}

// Shutdown tears down the debugger child.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Shutdown()
}

func (s *Session) executeLocked(command string) error {
	if command == "" {
		return nil
	}
	if !s.ch.Alive() {
		return schema.ErrNotAlive
	}
	if err := s.ch.Write(command); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *Session) runningLocked(ctx context.Context) (bool, error) {
	if !s.dirty {
		return s.running, nil
	}
	reply, err := s.queryLocked(ctx, cmdProgramStatus)
	if err != nil {
		return false, err
	}
	s.running = !strings.Contains(reply, notRunningMarker)
	s.dirty = false
	if s.log != nil {
		s.log.Debug("running state recomputed", "running", s.running)
	}
	return s.running, nil
}

// queryLocked bypasses the dirty flag: informational queries must not
// invalidate the running-state cache.
func (s *Session) queryLocked(ctx context.Context, command string) (string, error) {
	if !s.ch.Alive() {
		return "", schema.ErrNotAlive
	}
	if err := s.ch.Write(command); err != nil {
		return "", err
	}
	out, _, err := s.reader.DrainUntilPrompt(ctx, true)
	return out, err
}
