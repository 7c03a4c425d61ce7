package gdbproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"pkt.systems/gdbx/schema"
)

// scriptedChannel replays canned chunks, one per ReadAvailable call.
type scriptedChannel struct {
	out     [][]byte
	errOut  [][]byte
	forever bool
}

func (s *scriptedChannel) Alive() bool {
	return s.forever || len(s.out) > 0 || len(s.errOut) > 0
}

func (s *scriptedChannel) ReadAvailable(stream Stream) []byte {
	q := &s.out
	if stream == Stderr {
		q = &s.errOut
	}
	if len(*q) == 0 {
		return nil
	}
	chunk := (*q)[0]
	*q = (*q)[1:]
	return chunk
}

func readerFor(ch channel, opts Options) *Reader {
	if opts.Prompt == "" {
		opts.Prompt = Prompt
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Millisecond
	}
	return &Reader{ch: ch, opts: opts}
}

func TestDrainDetectsSentinelSplitAcrossChunks(t *testing.T) {
	ch := &scriptedChannel{
		out:     [][]byte{[]byte("abc(gd"), []byte("b) ")},
		forever: true,
	}
	r := readerFor(ch, Options{})

	out, errText, err := r.DrainUntilPrompt(context.Background(), true)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if out != "abc" {
		t.Fatalf("expected split sentinel trimmed, got %q", out)
	}
	if errText != "" {
		t.Fatalf("unexpected diagnostics: %q", errText)
	}
}

func TestDrainKeepsSentinelWhenNotTrimming(t *testing.T) {
	ch := &scriptedChannel{
		out:     [][]byte{[]byte("abc(gdb) ")},
		forever: true,
	}
	r := readerFor(ch, Options{})

	out, _, err := r.DrainUntilPrompt(context.Background(), false)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if out != "abc(gdb) " {
		t.Fatalf("expected sentinel preserved, got %q", out)
	}
}

func TestDrainCollectsDiagnostics(t *testing.T) {
	ch := &scriptedChannel{
		out:     [][]byte{[]byte("done\n(gdb) ")},
		errOut:  [][]byte{[]byte("warning: "), []byte("boom\n")},
		forever: true,
	}
	r := readerFor(ch, Options{})

	out, errText, err := r.DrainUntilPrompt(context.Background(), true)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if out != "done\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if errText != "warning: boom\n" {
		t.Fatalf("unexpected diagnostics: %q", errText)
	}
}

func TestDrainReturnsPartialOnChildDeath(t *testing.T) {
	ch := &scriptedChannel{
		out: [][]byte{[]byte("par"), []byte("tial")},
	}
	r := readerFor(ch, Options{})

	out, _, err := r.DrainUntilPrompt(context.Background(), true)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if out != "partial" {
		t.Fatalf("expected partial output on death, got %q", out)
	}
}

func TestDrainTimeout(t *testing.T) {
	ch := &scriptedChannel{forever: true}
	r := readerFor(ch, Options{Timeout: 20 * time.Millisecond})

	_, _, err := r.DrainUntilPrompt(context.Background(), true)
	if !errors.Is(err, schema.ErrPromptTimeout) {
		t.Fatalf("expected ErrPromptTimeout, got %v", err)
	}
}

func TestDrainHonorsContextCancel(t *testing.T) {
	ch := &scriptedChannel{forever: true}
	r := readerFor(ch, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := r.DrainUntilPrompt(ctx, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDrainRealProcess(t *testing.T) {
	proc, err := Spawn(nil, "/bin/sh", "-c", `printf 'hello\n(gdb) '`)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer proc.Shutdown()

	r := NewReader(proc, Options{Timeout: 5 * time.Second})
	out, _, err := r.DrainUntilPrompt(context.Background(), true)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if out != "hello\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}
