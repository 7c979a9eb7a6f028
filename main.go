package main

import (
	"os"

	"github.com/GoBlogAdmin/GoBlogAdmin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
