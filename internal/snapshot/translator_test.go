package snapshot

import (
	"context"
	"errors"
	"testing"

	"pkt.systems/gdbx/schema"
)

type fakeSession struct {
	running bool
	replies map[string]string
	queries []string
}

func (f *fakeSession) RunningProgram(ctx context.Context) (bool, error) {
	return f.running, nil
}

func (f *fakeSession) Query(ctx context.Context, command string) (string, error) {
	f.queries = append(f.queries, command)
	return f.replies[command], nil
}

func TestSnapshotIdleReturnsNil(t *testing.T) {
	f := &fakeSession{}
	tr := New(f, 4, nil)

	frame, err := tr.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if frame != nil {
		t.Fatalf("expected nil frame when idle, got %+v", frame)
	}
	if len(f.queries) != 0 {
		t.Fatalf("idle snapshot must not query, got %v", f.queries)
	}
}

func TestSnapshotParsesFrame(t *testing.T) {
	f := &fakeSession{
		running: true,
		replies: map[string]string{
			"print /x $sp": "$1 = 0x7ffc0010\n",
			"print /x $fp": "$2 = 0x7ffc0030\n",
			"x/4xg $sp": "0x7ffc0010:\t0x0000000000000001\t0x0000000000000002\n" +
				"0x7ffc0020:\t0x0000000000000003\t0x0000000000000004\n",
		},
	}
	tr := New(f, 4, nil)

	frame, err := tr.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if frame == nil {
		t.Fatalf("expected a frame")
	}
	if want := schema.Address(0x7ffc0010 / WordSize); frame.StackPointer != want {
		t.Fatalf("expected stack pointer %d, got %d", want, frame.StackPointer)
	}
	if want := schema.Address(0x7ffc0030 / WordSize); frame.FramePointer != want {
		t.Fatalf("expected frame pointer %d, got %d", want, frame.FramePointer)
	}
	want := []schema.Word{1, 2, 3, 4}
	if len(frame.Memory) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(frame.Memory))
	}
	for i, w := range want {
		if frame.Memory[i] != w {
			t.Fatalf("word %d: expected %d, got %d", i, w, frame.Memory[i])
		}
	}
}

func TestSnapshotPointerParseError(t *testing.T) {
	f := &fakeSession{
		running: true,
		replies: map[string]string{
			"print /x $sp": "No symbol table is loaded.\n",
		},
	}
	tr := New(f, 4, nil)

	if _, err := tr.Snapshot(context.Background()); !errors.Is(err, schema.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestSnapshotMemoryParseError(t *testing.T) {
	f := &fakeSession{
		running: true,
		replies: map[string]string{
			"print /x $sp": "$1 = 0x1000\n",
			"print /x $fp": "$2 = 0x1000\n",
			"x/4xg $sp":    "Cannot access memory at address 0x1000\n",
		},
	}
	tr := New(f, 4, nil)

	if _, err := tr.Snapshot(context.Background()); !errors.Is(err, schema.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseMemorySkipsProseLines(t *testing.T) {
	reply := "\n0x1000:\t0x0a\t0x0b\n\n0x1010:\t0x0c\n"
	memory, err := parseMemory(reply)
	if err != nil {
		t.Fatalf("parse memory: %v", err)
	}
	want := []schema.Word{0x0a, 0x0b, 0x0c}
	if len(memory) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(memory))
	}
	for i, w := range want {
		if memory[i] != w {
			t.Fatalf("word %d: expected %d, got %d", i, w, memory[i])
		}
	}
}
