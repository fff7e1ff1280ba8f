package main

import "github.com/username/expensetracker/backend/src/cmd"

func main() {
	cmd.Execute()
}
