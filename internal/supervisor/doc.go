// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

/*
Package supervisor provides process supervision for DDoSWatch using suture v4.

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("ddoswatch")
	├── DetectionSupervisor ("detection-layer")
	│   └── MonitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (metrics and health, if METRICS_ENABLED)

A crash in the detection loop does not take down the metrics endpoint, and an
HTTP listener failure does not interrupt detection. Supervisor events are
logged through sutureslog using the zerolog-backed slog handler from the
logging package.

Basic setup in main.go:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDetectionService(services.NewMonitorService(mon))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped with error")
	}
*/
package supervisor
