// Package slides materializes a lesson's slide decks: a batch image fetch,
// optional answer overlays on quiz pages, and a PDF assembled in page order.
package slides
