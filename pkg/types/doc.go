// Package types defines the interfaces shared across appbox packages.
//
// The central one is FS: every component that touches the disk (the state
// store, the native fetcher and extractor, the cleaners) goes through it so
// tests can run against an in-memory filesystem.
package types
