//go:build !nogpu

package main

// GPU acceleration for gg surfaces. Build with -tags nogpu for a pure
// software binary.
import _ "github.com/gogpu/gg/gpu"
