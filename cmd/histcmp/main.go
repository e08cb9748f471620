// Package main provides the entry point for the histcmp CLI.
//
// histcmp compares the histograms stored in two ROOT files with a battery
// of statistical compatibility checks and reports the differences.
//
// Usage:
//
//	histcmp compare <monitored.root> <reference.root>
//	histcmp history --diff <monitored.root> <reference.root>
//
// See --help for all available options.
package main

// main is the entry point for histcmp.
func main() {
	Execute()
}
