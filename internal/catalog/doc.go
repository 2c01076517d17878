// Package catalog defines the platform's content model (courses, lessons,
// replay segments, slide decks) and the source interfaces the retrieval
// pipeline consumes. It also owns the naming rules that make artifact paths
// stable across runs.
package catalog
