// Package ffmpeg concatenates downloaded lesson segments and transcodes them
// into a single video with the configured encoder settings.
package ffmpeg
