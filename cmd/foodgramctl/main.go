// Command foodgramctl administers a Foodgram database
package main

import "github.com/alchemorsel/foodgram/cmd/foodgramctl/commands"

func main() {
	commands.Execute()
}
