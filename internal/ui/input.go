package ui

// InputState holds the polled state of inputs for a single frame.
// This separates input polling from input handling logic.
type InputState struct {
	Quit             bool
	ToggleFullscreen bool
	ShuffleDeck      bool

	// Mouse state
	WheelX, WheelY float64
	ShiftHeld      bool
	DragStart      bool // Left mouse button just pressed
	DragActive     bool // Left mouse button is being held down
	MouseX, MouseY int
}
