package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"pkt.systems/gdbx/core"
	"pkt.systems/gdbx/internal/eventbus"
	"pkt.systems/gdbx/internal/snapshot"
	"pkt.systems/gdbx/schema"
	"pkt.systems/pslog"
)

// Config controls the console front end.
type Config struct {
	Prompt      string
	HistoryFile string
}

// Placeholder text for panels with no data yet.
var panelPlaceholders = map[schema.Panel]string{
	schema.PanelSource:   "No source code.",
	schema.PanelAssembly: "No assembly.",
	schema.PanelLocals:   "No local variables.",
	schema.PanelParams:   "No formal parameters.",
}

// Console is the line-editing front end driving one debugger session. It
// issues commands synchronously and receives derived state back through the
// event bus, whose receiving end is owned by the renderer goroutine.
type Console struct {
	cfg       Config
	session   *core.Session
	stack     *core.StackModel
	snapshots *snapshot.Translator
	bus       *eventbus.Bus
	log       pslog.Logger

	mu     sync.Mutex
	latest map[schema.Panel]string
	status schema.StatusEvent
	view   schema.StackView
}

// New wires a console over the session.
func New(cfg Config, session *core.Session, snapshots *snapshot.Translator, bus *eventbus.Bus, logger pslog.Logger) *Console {
	if cfg.Prompt == "" {
		cfg.Prompt = "(gdb) "
	}
	return &Console{
		cfg:       cfg,
		session:   session,
		stack:     core.NewStackModel(),
		snapshots: snapshots,
		bus:       bus,
		log:       logger,
		latest:    make(map[schema.Panel]string),
	}
}

// Run reads commands until the debugger exits or input reaches EOF.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.cfg.Prompt,
		HistoryFile:     c.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       core.CommandQuit,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	events, cancel := c.bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.render(rl.Stdout(), events)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// The debugger greets with a banner before the first prompt.
	out, errText, err := c.session.WaitReady(ctx)
	c.print(rl.Stdout(), out)
	c.print(rl.Stderr(), errText)
	if err != nil {
		return err
	}
	c.refresh(ctx)

	for c.session.Alive() {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				c.quit(ctx, rl)
				break
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			c.meta(rl.Stdout(), line)
			continue
		}

		out, errText, err := c.session.Run(ctx, line)
		if err != nil {
			if errors.Is(err, schema.ErrNotAlive) {
				break
			}
			c.print(rl.Stderr(), err.Error()+"\n")
			continue
		}
		c.print(rl.Stdout(), out)
		c.print(rl.Stderr(), errText)
		c.refresh(ctx)
	}
	return c.session.Shutdown()
}

// quit issues the quit command on input EOF. The command is echoed since it
// was never typed.
func (c *Console) quit(ctx context.Context, rl *readline.Instance) {
	c.print(rl.Stdout(), core.CommandQuit+"\n")
	out, errText, err := c.session.Run(ctx, core.CommandQuit)
	c.print(rl.Stdout(), out)
	c.print(rl.Stderr(), errText)
	if err != nil && c.log != nil {
		c.log.Debug("quit command failed", "err", err)
	}
}

// refresh recomputes the derived state and publishes it for rendering.
func (c *Console) refresh(ctx context.Context) {
	running, err := c.session.RunningProgram(ctx)
	if err != nil {
		if c.log != nil {
			c.log.Warn("status refresh failed", "err", err)
		}
		return
	}
	status := schema.StatusEvent{Running: running, Text: schema.StatusIdle}
	if running {
		status.Text = schema.StatusRunning
	}
	c.bus.OnStatus(status)

	queries := []struct {
		panel schema.Panel
		fn    func(context.Context) (string, error)
	}{
		{schema.PanelSource, c.session.SourceCode},
		{schema.PanelAssembly, c.session.AssemblyCode},
		{schema.PanelLocals, c.session.LocalVariables},
		{schema.PanelParams, c.session.FormalParameters},
	}
	for _, q := range queries {
		text, err := q.fn(ctx)
		if err != nil {
			if c.log != nil {
				c.log.Warn("panel refresh failed", "panel", q.panel, "err", err)
			}
			continue
		}
		c.bus.OnPanel(schema.PanelEvent{Panel: q.panel, Text: text})
	}

	frame, err := c.snapshots.Snapshot(ctx)
	if err != nil {
		if c.log != nil {
			c.log.Warn("stack snapshot failed", "err", err)
		}
		return
	}
	c.bus.OnStack(schema.StackEvent{View: c.stack.ApplySnapshot(frame)})
}

// render owns the receiving end of the bus. Status transitions are printed
// as they happen; panel and stack state is kept for the ":" commands.
func (c *Console) render(w io.Writer, events <-chan eventbus.Event) {
	var lastStatus string
	for event := range events {
		switch event.Type {
		case eventbus.EventStatus:
			c.mu.Lock()
			c.status = event.Status
			c.mu.Unlock()
			if event.Status.Text != lastStatus {
				lastStatus = event.Status.Text
				fmt.Fprintln(w, event.Status.Text)
			}
		case eventbus.EventPanel:
			c.mu.Lock()
			c.latest[event.Panel.Panel] = event.Panel.Text
			c.mu.Unlock()
		case eventbus.EventStack:
			c.mu.Lock()
			c.view = event.Stack.View
			c.mu.Unlock()
		}
	}
}

// meta handles console-local ":" commands against the rendered state.
func (c *Console) meta(w io.Writer, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch line {
	case ":status":
		text := c.status.Text
		if text == "" {
			text = schema.StatusIdle
		}
		fmt.Fprintln(w, text)
	case ":stack":
		hLine(w, "stack")
		for _, l := range RenderStackView(c.view, colorEnabled()) {
			fmt.Fprintln(w, l)
		}
	case ":source":
		c.printPanel(w, schema.PanelSource)
	case ":asm", ":assembly":
		c.printPanel(w, schema.PanelAssembly)
	case ":locals":
		c.printPanel(w, schema.PanelLocals)
	case ":params":
		c.printPanel(w, schema.PanelParams)
	case ":help":
		fmt.Fprintln(w, "console commands: :status :stack :source :asm :locals :params :help")
		fmt.Fprintln(w, "anything else is passed to the debugger")
	default:
		fmt.Fprintf(w, "unknown console command %q (try :help)\n", line)
	}
}

func (c *Console) printPanel(w io.Writer, panel schema.Panel) {
	text := c.latest[panel]
	if strings.TrimSpace(text) == "" {
		text = panelPlaceholders[panel] + "\n"
	}
	hLine(w, string(panel))
	c.print(w, text)
}

func (c *Console) print(w io.Writer, text string) {
	if text == "" {
		return
	}
	_, _ = io.WriteString(w, text)
}
