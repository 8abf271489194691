package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/rentfleet/internal/config"
	"github.com/ukydev/rentfleet/internal/fleet"
	"github.com/ukydev/rentfleet/internal/models"
	"github.com/ukydev/rentfleet/internal/storage"
	"github.com/ukydev/rentfleet/internal/tracking"
)

func main() {
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.Logger.Level); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()

	var backend storage.Backend
	switch cfg.Storage.Backend {
	case "mongo":
		client, err := storage.ConnectMongo(cfg.Storage.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())
		backend = storage.NewMongoBackend(client.Database(cfg.Storage.MongoDB).Collection(cfg.Storage.MongoCollection))
	default:
		backend = storage.NewFileBackend(cfg.Storage.DataFile, cfg.Storage.MaxStateBytes)
	}

	store := fleet.NewStore(backend)
	store.Load(ctx)
	if len(store.Vehicles()) == 0 {
		seedDemoFleet(ctx, store)
	}

	simCfg := tracking.Config{Interval: cfg.Sim.TickInterval}
	if cfg.Sim.MQTTBroker != "" {
		publisher, err := tracking.NewMQTTPublisher(cfg.Sim.MQTTBroker, cfg.Sim.MQTTClientID)
		if err != nil {
			log.WithError(err).Warn("MQTT broker unreachable, telemetry feed disabled")
		} else {
			simCfg.Publisher = publisher
			defer publisher.Close()
		}
	}

	sim := tracking.NewSimulator(store, simCfg)
	sim.Start()
	defer sim.Stop()

	log.WithFields(log.Fields{
		"backend":  cfg.Storage.Backend,
		"vehicles": len(store.Vehicles()),
		"interval": cfg.Sim.TickInterval,
	}).Info("Fleet engine started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("Shutting down")
}

// seedDemoFleet populates a first-run store so the dashboard has something to
// show.
func seedDemoFleet(ctx context.Context, store *fleet.Store) {
	batches := []struct {
		base  models.Vehicle
		count int
	}{
		{models.Vehicle{
			Make: "Toyota", Model: "Camry", Year: 2023, Category: "economy",
			LicensePlate: "FLT-100", VIN: "4T1BF1FK5PU100100",
			Status: models.StatusAvailable, Location: "Downtown",
			DailyRate: 50, WeeklyRate: 300, FuelLevel: 90,
		}, 3},
		{models.Vehicle{
			Make: "Honda", Model: "Civic", Year: 2024, Category: "compact",
			LicensePlate: "FLT-200", VIN: "2HGFE2F59RH200200",
			Status: models.StatusRented, Location: "Airport",
			DailyRate: 45, WeeklyRate: 270, FuelLevel: 65,
		}, 2},
		{models.Vehicle{
			Make: "Tesla", Model: "Model 3", Year: 2024, Category: "luxury",
			LicensePlate: "FLT-300", VIN: "5YJ3E1EA8RF300300",
			Status: models.StatusAvailable, Location: "Downtown",
			DailyRate: 95, WeeklyRate: 560, FuelLevel: 100,
		}, 1},
	}
	total := 0
	for _, b := range batches {
		added, err := store.AddVehicles(ctx, b.base, b.count)
		if err != nil {
			log.WithError(err).Error("Failed to seed vehicles")
			continue
		}
		total += len(added)
	}
	log.WithField("vehicles", total).Info("Seeded demo fleet")
}
