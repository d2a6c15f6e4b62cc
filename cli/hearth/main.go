package main

import (
	"os"

	"github.com/joho/godotenv"

	hearthcmder "github.com/hearthchat/hearth/cmd/hearth"
)

func main() {
	// Optional: .env values feed the HEARTH_ viper bindings.
	_ = godotenv.Load()

	cmd := hearthcmder.NewHearthCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
