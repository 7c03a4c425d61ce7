package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/gdbx/schema"
	"pkt.systems/pslog"
)

// WordSize is the byte width of one examined stack word. Byte addresses
// from the debugger are divided by it to produce word-granular addresses.
const WordSize = 8

const defaultWords = 24

// Fixed query commands. The memory examine reads giant (8 byte) hex words.
const (
	cmdPrintSP = "print /x $sp"
	cmdPrintFP = "print /x $fp"
	memoryFmt  = "x/%dxg $sp"
)

// Session is the query surface the translator drives.
type Session interface {
	RunningProgram(ctx context.Context) (bool, error)
	Query(ctx context.Context, command string) (string, error)
}

// Translator turns debugger text replies into stack frame snapshots.
type Translator struct {
	session Session
	words   int
	log     pslog.Logger
}

// New builds a translator capturing words stack words per snapshot.
func New(session Session, words int, logger pslog.Logger) *Translator {
	if words <= 0 {
		words = defaultWords
	}
	return &Translator{session: session, words: words, log: logger}
}

// Snapshot captures the current stack frame. It returns nil when no program
// is being debugged; feeding that to the stack model clears it.
func (t *Translator) Snapshot(ctx context.Context) (*schema.StackFrame, error) {
	running, err := t.session.RunningProgram(ctx)
	if err != nil || !running {
		return nil, err
	}
	sp, err := t.pointer(ctx, cmdPrintSP)
	if err != nil {
		return nil, err
	}
	fp, err := t.pointer(ctx, cmdPrintFP)
	if err != nil {
		return nil, err
	}
	reply, err := t.session.Query(ctx, fmt.Sprintf(memoryFmt, t.words))
	if err != nil {
		return nil, err
	}
	memory, err := parseMemory(reply)
	if err != nil {
		return nil, err
	}
	if t.log != nil {
		t.log.Trace("stack snapshot", "sp", sp, "fp", fp, "words", len(memory))
	}
	return &schema.StackFrame{
		StackPointer: schema.Address(sp / WordSize),
		FramePointer: schema.Address(fp / WordSize),
		Memory:       memory,
	}, nil
}

func (t *Translator) pointer(ctx context.Context, command string) (uint64, error) {
	reply, err := t.session.Query(ctx, command)
	if err != nil {
		return 0, err
	}
	value, ok := hexValue(reply)
	if !ok {
		return 0, fmt.Errorf("%w: pointer reply %q", schema.ErrParse, strings.TrimSpace(reply))
	}
	return value, nil
}

// parseMemory decodes examine output: one address per line followed by hex
// words, e.g. "0x7ffc10:\t0x01\t0x02".
func parseMemory(reply string) ([]schema.Word, error) {
	var memory []schema.Word
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		for _, field := range strings.Fields(line[colon+1:]) {
			value, ok := hexValue(field)
			if !ok {
				return nil, fmt.Errorf("%w: memory field %q", schema.ErrParse, field)
			}
			memory = append(memory, schema.Word(value))
		}
	}
	if len(memory) == 0 {
		return nil, fmt.Errorf("%w: no memory words in reply", schema.ErrParse)
	}
	return memory, nil
}

// hexValue extracts the first 0x literal in s.
func hexValue(s string) (uint64, bool) {
	i := strings.Index(s, "0x")
	if i < 0 {
		return 0, false
	}
	rest := s[i+2:]
	end := 0
	for end < len(rest) && isHexDigit(rest[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseUint(rest[:end], 16, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func isHexDigit(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'f':
		return true
	case b >= 'A' && b <= 'F':
		return true
	}
	return false
}
