// Package cmd defines the Cobra command tree for grf. The root command
// resolves a release manifest, applies include/exclude filters, and either
// prints the asset listing or downloads and verifies the selection.
package cmd
