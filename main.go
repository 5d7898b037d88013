// ABOUTME: Entry point for the agent dashboard API
// ABOUTME: Delegates to the cobra command tree in cmd/

package main

import "github.com/markalston/agent-dashboard/cmd"

func main() {
	cmd.Execute()
}
