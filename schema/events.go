package schema

// Status strings published to the rendering context after every command.
const (
	StatusIdle    = "GDB is idle."
	StatusRunning = "GDB is currently running a program."
)

// Panel identifies a derived text panel.
type Panel string

const (
	// PanelSource carries the source listing.
	PanelSource Panel = "source"
	// PanelAssembly carries the disassembly listing.
	PanelAssembly Panel = "assembly"
	// PanelLocals carries the local variables listing.
	PanelLocals Panel = "locals"
	// PanelParams carries the formal parameters listing.
	PanelParams Panel = "params"
)

// StatusEvent carries the running/idle status.
type StatusEvent struct {
	Running bool
	Text    string
}

// PanelEvent carries refreshed panel text.
type PanelEvent struct {
	Panel Panel
	Text  string
}

// StackEvent carries a refreshed stack view.
type StackEvent struct {
	View StackView
}
