// Package execution runs shell command lines, optionally under an elevated
// identity.
//
// Callers build the command line with pkg/quote and hand it to a Runner
// together with a Privilege. ShellRunner executes it through /bin/sh, using
// sudo when the privilege names a user other than the invoking one.
// DryRunRunner records and logs commands without running them.
package execution
