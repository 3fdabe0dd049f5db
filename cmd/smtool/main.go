// Command smtool inspects, validates and rewrites version 3 source maps.
//
//	smtool lookup out.js.map 12:4
//	smtool validate dist/*.map
//	smtool strip hinted.js -o out.js
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
