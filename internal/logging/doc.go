// Package logging assembles structured slog loggers and formatting helpers used
// across lessonvault.
//
// It owns the console and JSON handlers, tees every record into a per-run JSON
// log file, and exposes context-aware helpers so pipeline code tags log lines
// with course, lesson, stage, and run identifiers. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
