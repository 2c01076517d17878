// Package services defines shared utilities consumed by the download pipeline
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp course, lesson, stage, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell tool
//     failures, configuration problems, and operator cancellation apart with
//     errors.Is.
//   - Subpackages wrapping the external command-line tools (aria2c, ffmpeg)
//     behind small, testable clients.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
