// Package statestore records which packages are installed.
//
// The store is a directory of marker files, one per package. A marker's
// existence is the definition of "installed"; nothing checks that the
// extracted application is still on disk. Markers carry the package name
// and source as two human-readable lines:
//
//	name: 'Firefox'
//	source: 'https://example.com/Firefox.zip'
//
// The contents are informational. Query and List only look at file names.
package statestore
