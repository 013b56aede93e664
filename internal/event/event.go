// Package event delivers engine notifications to the host. Delivery is
// synchronous and fire-and-forget: handlers run on the calling
// goroutine, in subscription order, and a panicking handler is
// recovered so it cannot take the engine down.
package event

// Kind identifies a notification type.
type Kind string

const (
	KindReady                Kind = "ready"
	KindStateChanged         Kind = "stateChanged"
	KindSelectionChanged     Kind = "selectionChanged"
	KindSearchActivated      Kind = "searchActivated"
	KindSearchDeactivated    Kind = "searchDeactivated"
	KindError                Kind = "error"
	KindButtonClicked        Kind = "buttonClicked"
	KindImageCutForClipboard Kind = "imageCutForClipboard"
	KindImageDeleted         Kind = "imageDeleted"
)

// Ready signals that the engine finished loading content.
type Ready struct{}

// StateChanged signals that the document content mutated.
type StateChanged struct{}

// SelectionChanged signals a selection move without a content change.
type SelectionChanged struct {
	Anchor int
	Head   int
}

// SearchActivated signals that Enter/Shift-Enter now advance search.
type SearchActivated struct {
	Query string
}

// SearchDeactivated signals that search stopped intercepting keys.
type SearchDeactivated struct{}

// Error reports a failed command to the host.
type Error struct {
	Kind        string
	Message     string
	Recoverable bool
}

// Rect is a host-coordinate rectangle, reported with button clicks so
// the host can anchor popovers.
type Rect struct {
	X, Y, Width, Height int
}

// ButtonClicked reports a click on a button node.
type ButtonClicked struct {
	ID   string
	Rect Rect
}

// ImageCutForClipboard carries the cut image's data; it is emitted
// before the image leaves the document.
type ImageCutForClipboard struct {
	Src    string
	Alt    string
	Width  string
	Height string
}

// ImageDeleted reports an image removal.
type ImageDeleted struct {
	Src         string
	ContainerID string
}

// KindOf returns the Kind for a payload.
func KindOf(payload any) Kind {
	switch payload.(type) {
	case Ready:
		return KindReady
	case StateChanged:
		return KindStateChanged
	case SelectionChanged:
		return KindSelectionChanged
	case SearchActivated:
		return KindSearchActivated
	case SearchDeactivated:
		return KindSearchDeactivated
	case Error:
		return KindError
	case ButtonClicked:
		return KindButtonClicked
	case ImageCutForClipboard:
		return KindImageCutForClipboard
	case ImageDeleted:
		return KindImageDeleted
	}
	return ""
}
