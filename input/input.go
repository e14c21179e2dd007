// Package input produces one Frame of player input per rendered frame, from
// devices or from a script.
package input

// Frame is the input observed during one rendered frame. Jump and Dash are
// edges: true only on the frame the button went down.
type Frame struct {
	MoveX float64
	Jump  bool
	Dash  bool
}

// Source yields the next frame of input.
type Source interface {
	Poll() Frame
}

// SourceFunc adapts a function to Source.
type SourceFunc func() Frame

func (f SourceFunc) Poll() Frame {
	return f()
}
