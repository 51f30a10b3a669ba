// Command worker runs a Temporal worker hosting the turn workflow and its
// activities.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/worker"
)

func main() {
	hostPort := flag.String("temporal", client.DefaultHostPort, "Temporal server host:port")
	namespace := flag.String("namespace", client.DefaultNamespace, "Temporal namespace")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := configuration.FromEnv()

	activities, err := worker.BuildActivities(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build activities", "error", err)
		os.Exit(1)
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  *hostPort,
		Namespace: *namespace,
	})
	if err != nil {
		logger.Error("failed to connect to Temporal", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, activities)

	logger.Info("worker starting", "host", *hostPort, "namespace", *namespace)
	if err := w.Run(temporalworker.InterruptCh()); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
