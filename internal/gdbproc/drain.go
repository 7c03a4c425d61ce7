package gdbproc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"pkt.systems/gdbx/schema"
)

// Prompt is the reply-boundary sentinel gdb prints after every reply.
const Prompt = "(gdb) "

const defaultPollInterval = 2 * time.Millisecond

// channel is the subset of Process the reader drives.
type channel interface {
	Alive() bool
	ReadAvailable(stream Stream) []byte
}

// Options tunes the drain loop.
type Options struct {
	// Prompt overrides the sentinel string. Defaults to Prompt.
	Prompt string
	// PollInterval is the sleep between empty polls. Defaults to 2ms.
	PollInterval time.Duration
	// Timeout bounds one drain. Zero disables the guard; when set, a drain
	// that never sees the sentinel fails with schema.ErrPromptTimeout.
	Timeout time.Duration
}

// Reader accumulates child output until the prompt sentinel is observed.
type Reader struct {
	ch   channel
	opts Options
}

// NewReader builds a reader over the process.
func NewReader(proc *Process, opts Options) *Reader {
	if opts.Prompt == "" {
		opts.Prompt = Prompt
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Reader{ch: proc, opts: opts}
}

// DrainUntilPrompt reads both child streams until the accumulated output
// ends with the prompt sentinel or the child dies, whichever comes first.
// The sentinel test runs against the cumulative buffer, so a prompt split
// across reads is still detected. When trimPrompt is set, exactly the
// sentinel is removed from the end of the returned output.
func (r *Reader) DrainUntilPrompt(ctx context.Context, trimPrompt bool) (string, string, error) {
	var out, errText bytes.Buffer
	prompt := []byte(r.opts.Prompt)

	var deadline time.Time
	if r.opts.Timeout > 0 {
		deadline = time.Now().Add(r.opts.Timeout)
	}

	hit := false
	for r.ch.Alive() {
		progressed := r.drainOnce(&out, &errText)
		if bytes.HasSuffix(out.Bytes(), prompt) {
			hit = true
			break
		}
		if err := ctx.Err(); err != nil {
			return out.String(), errText.String(), err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return out.String(), errText.String(),
				fmt.Errorf("%w after %s", schema.ErrPromptTimeout, r.opts.Timeout)
		}
		if !progressed {
			time.Sleep(r.opts.PollInterval)
		}
	}
	if !hit {
		// The child died; pick up whatever it flushed on the way out.
		r.drainOnce(&out, &errText)
		hit = bytes.HasSuffix(out.Bytes(), prompt)
	}
	// Diagnostics belonging to this reply may still be buffered when the
	// prompt lands; sweep stderr so they are not blamed on the next command.
	for {
		chunk := r.ch.ReadAvailable(Stderr)
		if len(chunk) == 0 {
			break
		}
		errText.Write(chunk)
	}

	text := out.String()
	if hit && trimPrompt {
		text = strings.TrimSuffix(text, r.opts.Prompt)
	}
	return text, errText.String(), nil
}

// drainOnce drains stderr then stdout once, keeping the streams fair.
func (r *Reader) drainOnce(out, errText *bytes.Buffer) bool {
	progressed := false
	if chunk := r.ch.ReadAvailable(Stderr); len(chunk) > 0 {
		errText.Write(chunk)
		progressed = true
	}
	if chunk := r.ch.ReadAvailable(Stdout); len(chunk) > 0 {
		out.Write(chunk)
		progressed = true
	}
	return progressed
}
