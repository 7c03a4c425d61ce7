package gdbproc

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/sys/unix"

	"pkt.systems/gdbx/schema"
	"pkt.systems/pslog"
)

// Stream selects one of the child's output streams.
type Stream int

const (
	// Stdout is the child's standard output stream.
	Stdout Stream = iota
	// Stderr is the child's diagnostic stream.
	Stderr
)

const readChunk = 4096

// Process owns a spawned debugger child with independent stdin, stdout and
// stderr pipes. Output reads are non-blocking: ReadAvailable returns
// whatever bytes the kernel has buffered and never waits for more.
type Process struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
	stderr *os.File
	outFd  int
	errFd  int
	outEOF bool
	errEOF bool
	closed bool
	log    pslog.Logger
}

// Spawn starts the debugger binary with the given argument list.
func Spawn(logger pslog.Logger, binary string, args ...string) (*Process, error) {
	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		closeAll(inR, inW)
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(inR, inW, outR, outW)
		return nil, err
	}

	cmd := exec.Command(binary, args...)
	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		closeAll(inR, inW, outR, outW, errR, errW)
		return nil, fmt.Errorf("%w: %v", schema.ErrSpawn, err)
	}
	// The child holds its own pipe ends now; closing the parent's copies
	// lets EOF propagate when the child exits.
	closeAll(inR, outW, errW)

	p := &Process{
		cmd:    cmd,
		stdin:  inW,
		stdout: outR,
		stderr: errR,
		outFd:  int(outR.Fd()),
		errFd:  int(errR.Fd()),
		log:    logger,
	}
	if err := unix.SetNonblock(p.outFd, true); err != nil {
		_ = p.Shutdown()
		return nil, err
	}
	if err := unix.SetNonblock(p.errFd, true); err != nil {
		_ = p.Shutdown()
		return nil, err
	}
	if logger != nil {
		logger.Debug("debugger spawned", "binary", binary, "args", args, "pid", cmd.Process.Pid)
	}
	return p, nil
}

// Write appends a newline to line and flushes it to the child's stdin.
func (p *Process) Write(line string) error {
	if !p.Alive() {
		return schema.ErrNotAlive
	}
	_, err := io.WriteString(p.stdin, line+"\n")
	return err
}

// ReadAvailable drains the bytes currently buffered on the stream. It
// returns immediately with zero or more bytes.
func (p *Process) ReadAvailable(stream Stream) []byte {
	fd := p.outFd
	if stream == Stderr {
		fd = p.errFd
	}
	var out []byte
	buf := make([]byte, readChunk)
	for {
		n, err := unix.Read(fd, buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			continue
		}
		switch {
		case err == unix.EINTR:
			continue
		case err == nil:
			// A zero-length read without error is end of stream.
			p.markEOF(stream)
			return out
		default:
			// Typically EAGAIN: nothing buffered right now.
			return out
		}
	}
}

// Alive reports whether the child is still running. It turns false once
// either output stream has observed end of stream.
func (p *Process) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.outEOF && !p.errEOF
}

// Shutdown closes all streams and reaps the child. Safe to call repeatedly.
func (p *Process) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.cmd.Wait()
	_ = p.stdout.Close()
	_ = p.stderr.Close()
	p.markEOF(Stdout)
	p.markEOF(Stderr)
	if p.log != nil {
		p.log.Debug("debugger reaped", "err", err)
	}
	return nil
}

func (p *Process) markEOF(stream Stream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stream == Stderr {
		p.errEOF = true
	} else {
		p.outEOF = true
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
