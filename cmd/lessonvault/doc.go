// Package main hosts the lessonvault CLI.
//
// The Cobra command tree resolves configuration once per invocation, applies
// flag overrides, and hands the work to the internal packages: `run` drives
// the orchestrator, `login` stores a session, `courses` lists what a run
// would see, and `doctor` reports tool and environment readiness.
package main
