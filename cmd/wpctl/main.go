// Package main provides the CLI entrypoint for wpctl.
package main

func main() {
	Execute()
}
