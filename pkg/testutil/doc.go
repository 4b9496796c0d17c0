// Package testutil provides fakes and fixtures shared by appbox tests:
// a testify-based Runner mock, an in-memory Fetcher, and builders for zip
// and tar.gz archives.
package testutil
