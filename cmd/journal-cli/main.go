package main

import (
	"context"
	"journal-backend/cmd/journal-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
