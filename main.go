package main

import (
	"os"

	"github.com/estatedesk/estatedesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
