// Package selector turns pointer events on a displayed image into committed
// line regions.
//
// A Selector is a two-state machine. PointerDown in Idle starts a drag,
// PointerMove updates the in-progress rectangle, and PointerUp or
// PointerLeave finish it. A finished drag is committed only when both of
// its extents exceed geometry.SelectionThreshold; smaller drags are
// discarded. Each committed rectangle is handed to the Extractor at once,
// so extraction never lags behind selection.
//
// Render projects the selector's rectangles onto the image: the whole
// picture dimmed, each selection shown at full brightness inside a blue
// border.
//
// A Selector is not safe for concurrent use.
package selector
