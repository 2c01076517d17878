// Package aria2 drives the aria2c download utility for single resumable
// transfers and manifest-driven batch transfers.
package aria2
