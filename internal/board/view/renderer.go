package view

import "streamboard/internal/app/ports"

// Node is an opaque handle for a rendered game card or stream row.
// Nodes are created by the Renderer and owned by the reconciliation
// engine; a node is destroyed only after its exit sequence completes.
type Node interface{}

// Renderer is the rendering abstraction the engine drives. The engine
// depends only on these capabilities, never on pipeline specifics.
//
// Contracts:
//   - EnterTransition performs the two-step commit internally (mark
//     the pre-transition state, flush, switch to resting state on the
//     next frame); calling it on a mid-exit node returns the node to
//     its resting state.
//   - AppendGameNode on an existing node repositions it without
//     destroying it; in-flight animations and node state survive.
//   - SetStreamOrder positions the listed nodes relative to each
//     other; unlisted (exiting) nodes keep occupying their slots so
//     surviving rows do not jump while an exit plays.
type Renderer interface {
	CreateGameNode(g ports.Game) Node
	UpdateGameNode(n Node, g ports.Game, streamCount int)
	AppendGameNode(n Node)
	RemoveGameNode(n Node)

	CreateStreamNode(game Node, s ports.Stream) Node
	UpdateStreamNode(n Node, s ports.Stream)
	SetStreamOrder(game Node, order []Node)
	RemoveStreamNode(game Node, n Node)

	EnterTransition(n Node)
	ExitTransition(n Node)

	ContainerWidth() int
	ApplyColumns(n int)
	DistinctCardOffsets() int
	// RequestFrame runs fn after the next rendering frame settles.
	RequestFrame(fn func())

	SetStatus(msg string)
}

// ConfirmSurface presents a yes/no prompt. Present reports false when
// no surface is available, in which case the gate short-circuits to
// the caller-supplied default.
type ConfirmSurface interface {
	Present(title, message string, reply func(accepted bool)) bool
}
