// Command pasgal runs parallel graph algorithms over large graphs.
package main

import "github.com/ucrparlay/pasgal-go/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
