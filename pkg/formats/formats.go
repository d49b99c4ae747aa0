// Package formats provides parsers for the mesh file formats used by levels
// and heroes.
package formats

// Note: Wavefront OBJ, optionally gzip or zstd compressed, is implemented in obj.go
