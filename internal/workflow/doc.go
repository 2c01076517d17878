// Package workflow drives a retrieval run. The Orchestrator hands courses to a
// fixed pool of workers; each CourseTask walks its lessons in order and each
// LessonTask runs the video and slide pipelines.
//
// Unit failures are recorded as workunit results and never stop sibling
// units. Cancellation of the run context stops new work, lets in-flight
// external tools unwind, and marks courses that never started as cancelled.
package workflow
