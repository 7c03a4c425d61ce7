package core

import (
	"context"
	"fmt"
	"strconv"

	"pkt.systems/gdbx/schema"
)

// SourceCode returns the current source listing, or "" when no program is
// being debugged.
func (s *Session) SourceCode(ctx context.Context) (string, error) {
	return s.gatedQuery(ctx, cmdSourceList)
}

// AssemblyCode returns the disassembly of the current function, or "" when
// no program is being debugged.
func (s *Session) AssemblyCode(ctx context.Context) (string, error) {
	return s.gatedQuery(ctx, cmdAssemblyList)
}

// LocalVariables returns the local variables listing, or "" when no program
// is being debugged.
func (s *Session) LocalVariables(ctx context.Context) (string, error) {
	return s.gatedQuery(ctx, cmdLocals)
}

// FormalParameters returns the formal parameters listing, or "" when no
// program is being debugged.
func (s *Session) FormalParameters(ctx context.Context) (string, error) {
	return s.gatedQuery(ctx, cmdParams)
}

// SourceListSize returns how many lines one source listing covers.
func (s *Session) SourceListSize(ctx context.Context) (int, error) {
	return s.numericQuery(ctx, cmdListSize)
}

// CurrentSourceLine returns the line the debuggee is stopped at.
func (s *Session) CurrentSourceLine(ctx context.Context) (int, error) {
	return s.numericQuery(ctx, cmdCurrentLine)
}

// gatedQuery short-circuits to an empty result when no program is being
// debugged, without touching the channel.
func (s *Session) gatedQuery(ctx context.Context, command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	running, err := s.runningLocked(ctx)
	if err != nil || !running {
		return "", err
	}
	return s.queryLocked(ctx, command)
}

// numericQuery parses the reply to an integer. A non-numeric reply degrades
// to zero with a reported parse error, never a crash.
func (s *Session) numericQuery(ctx context.Context, command string) (int, error) {
	reply, err := s.gatedQuery(ctx, command)
	if err != nil || reply == "" {
		return 0, err
	}
	n, ok := firstInt(reply)
	if !ok {
		return 0, fmt.Errorf("%w: %q", schema.ErrParse, preview(reply, 60))
	}
	return n, nil
}

// firstInt extracts the first decimal integer embedded in s.
func firstInt(s string) (int, bool) {
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if n, err := strconv.Atoi(s[start:i]); err == nil {
				return n, true
			}
			start = -1
		}
	}
	return 0, false
}

func preview(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
