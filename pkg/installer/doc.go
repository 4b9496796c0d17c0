// Package installer performs the install and uninstall transitions for a
// compressed application bundle.
//
// Install runs strictly ordered steps, each its own side-effect boundary:
//
//  1. resolve the archive format (no side effects on failure)
//  2. ensure the shared download cache exists
//  3. download the archive to <cache>/<name>.app.<ext>
//  4. remove the previous bundle from the install root (privileged)
//  5. extract the archive into the install root (privileged)
//  6. write the installed marker
//
// Nothing is rolled back. A failed download leaves the previous install
// untouched; a failed extraction happens after step 4, so the previous
// bundle is gone and no marker is written.
package installer
