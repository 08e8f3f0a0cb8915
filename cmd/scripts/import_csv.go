// Command import_csv loads users from a CSV export into the configured MongoDB.
//
//	go run ./cmd/scripts users.csv
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ArowuTest/safeplate-admin-backend/internal/config"
	mongorepo "github.com/ArowuTest/safeplate-admin-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/ArowuTest/safeplate-admin-backend/internal/utils"
	"github.com/ArowuTest/safeplate-admin-backend/pkg/mongodb"
	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("CSV file path is required as a command line argument")
	}
	csvFilePath := os.Args[1]

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Storage.Driver != "mongodb" {
		log.WithField("driver", cfg.Storage.Driver).Fatal("Import needs the mongodb storage driver")
	}

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to ensure indexes")
	}

	file, err := os.Open(csvFilePath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open CSV file")
	}
	defer file.Close()

	userRepo := mongorepo.NewUserRepository(db)
	importer := utils.NewUserImporter(userRepo, services.NewPointsLedger(userRepo))
	result, err := importer.ImportUsers(ctx, file, "csv-import")
	if err != nil {
		log.WithError(err).Fatal("Failed to import users")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
