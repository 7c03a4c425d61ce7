package schema

import "errors"

var (
	// ErrSpawn indicates the debugger child could not be started.
	ErrSpawn = errors.New("debugger could not be spawned")
	// ErrNotAlive indicates a command was issued after the child exited.
	ErrNotAlive = errors.New("debugger process is not alive")
	// ErrParse indicates a debugger reply did not have the expected shape.
	ErrParse = errors.New("debugger reply could not be parsed")
	// ErrPromptTimeout indicates the prompt sentinel was not observed within
	// the configured drain timeout even though the child is still alive.
	ErrPromptTimeout = errors.New("prompt not observed before timeout")
)
