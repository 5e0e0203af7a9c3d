// Command foundry turns raw model assets into configured prefabs and
// registers them as catalog entries.
package main

import "github.com/papapumpkin/foundry/cmd"

func main() {
	cmd.Execute()
}
