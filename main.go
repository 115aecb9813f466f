// Package main is the entry point for the deepsampler CLI.
package main

import "deepsampler.dev/pkg/deepsampler/cmd"

func main() {
	cmd.Execute()
}
