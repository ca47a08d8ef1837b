// Package cli implements the command-line interface for conf-authors.
//
// The cli package provides the Cobra-based root command. --author prints how
// many authors of the target year also published in each baseline year;
// --affiliation counts the institutions of the configured years' authors.
// Both reports share the cached author identifiers in the results directory.
package cli
