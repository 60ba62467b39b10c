// Command lightarchive serves the Light Archive HTTP API and MCP tool server.
package main

func main() {
	Execute()
}
