// Package provider exposes the query/install/uninstall surface for a single
// compressed application resource and converges resources to their desired
// ensure state.
//
// State is observed only through the installed marker: a resource whose
// marker exists is installed, anything else is absent. Converge compares that
// state with the desired one and calls the installer only when they differ.
package provider
