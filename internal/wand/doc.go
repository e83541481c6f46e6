// Package wand executes command-line style image options sequentially
// against a working image list. Options come in four classes: settings
// mutate the configuration store, per-image operators run once per
// image, list operators act on the whole sequence, and control options
// manage grouping, cloning and reads.
//
// A Context carries the working list, the active settings with their
// derived draw and quantize defaults, two bounded nesting stacks and an
// exception sink. Failures accumulate in the sink instead of aborting
// the run; the caller drains them when the option stream ends.
package wand
