package main

import (
	"github.com/Shekhar17ACS/IETE/app/config"
	"github.com/Shekhar17ACS/IETE/app/database"
)

// Applies the schema without starting the server, for deploy pipelines.
func main() {
	config.InitDB()
	defer config.GetDB().Close()

	if err := database.RunMigrations(config.GetDB()); err != nil {
		config.Log.Fatal().Err(err).Msg("Migration failed")
	}
	config.Log.Info().Msg("Migrations applied")
}
