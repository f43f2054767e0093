package main

import "github.com/printwizard/backend/cmd/boardconv/cmd"

func main() {
	cmd.Execute()
}
