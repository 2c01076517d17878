// Package preflight runs environment checks before a retrieval run: output and
// scratch directory access, free disk space, external tool availability, and
// whether the platform still accepts the stored session.
package preflight
