// Package imaging implements the pixel-level collaborators consumed by
// the option engine: image loading (full decode or header-only probe),
// encoding, color parsing, and a registry of named transforms.
//
// The engine in internal/wand treats everything here as opaque: it hands
// an image and a transform name to Apply and receives a replacement
// sequence or an error. Geometry transforms are built on
// github.com/disintegration/imaging, effect and tone adjustments on
// github.com/anthonynsimon/bild, and color parsing on
// github.com/lucasb-eyer/go-colorful.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Region rectangles
// are inclusive of Min and exclusive of Max.
//
// # Ownership
//
// Transforms never mutate their input image; they return replacements.
// The caller owns sequencing, splicing and disposal of results.
package imaging
