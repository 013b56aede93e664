package edit

import "errors"

var (
	// ErrStyle reports a block-style command with no retypable block
	// under the selection.
	ErrStyle = errors.New("no block at the selection accepts that style")

	// ErrNoCommonList reports a list toggle whose selection starts
	// inside a list but shares no list ancestor with its end.
	ErrNoCommonList = errors.New("selection spans no common list")

	// ErrNotInList reports a list-item split outside any list item.
	ErrNotInList = errors.New("selection is not inside a list item")

	// ErrNotInTable reports a table command outside any table.
	ErrNotInTable = errors.New("selection is not inside a table")

	// ErrNoSingleLinkSelection reports a link removal whose selection
	// does not resolve to exactly one linked text run.
	ErrNoSingleLinkSelection = errors.New("selection does not cover exactly one link")

	// ErrNoImageSelection reports an image command whose selection is
	// not a single selected image node.
	ErrNoImageSelection = errors.New("selection is not a single image")

	// ErrUnknownID reports a container or button id with no matching
	// node.
	ErrUnknownID = errors.New("no node with that id")
)
