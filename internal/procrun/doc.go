// Package procrun runs external tools such as aria2c and ffmpeg.
//
// Child output is streamed straight to the terminal so download and encode
// progress stays visible. Cancellation arrives through the context: the
// caller-provided interrupt handler runs first (each tool has its own way of
// stopping cleanly), then the runner escalates with SIGTERM and SIGKILL so no
// child outlives a run.
package procrun
