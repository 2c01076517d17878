// Package video turns a lesson's replay segments into one transcoded file.
//
// Segments download one at a time into the segment cache, where partial
// transfers survive between runs. Once every segment is present they are
// concatenated in ascending order with ffmpeg. The final file's existence is
// the only completion marker.
package video
