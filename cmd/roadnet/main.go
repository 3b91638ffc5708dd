package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - process:      Build and simplify a road graph
// - route:        Shortest route through waypoints
// - travel-time:  Route and estimate its travel time
// - live-route:   Travel time of a route over a time sweep
// - reachable:    Nodes within a cost budget of a point
// - simulate:     Sensor modification scenarios
// - aggregate:    Raw sensor feed into the sensor store
// - find-gaps:    Holes in the stored data point timeline
// - extract-gpkg: GeoPackage roads into road JSON
// - parse-raw:    Raw road/sensor feed into processed JSON
// - export:       Processed graph as GeoJSON
// - inspect:      Processed graph statistics

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runSubcommand(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context, name string, args []string) error {
	switch name {
	case "process":
		return handleProcess(ctx, args)
	case "route":
		return handleRoute(ctx, args)
	case "travel-time":
		return handleTravelTime(ctx, args)
	case "live-route":
		return handleLiveRoute(ctx, args)
	case "reachable":
		return handleReachable(ctx, args)
	case "simulate":
		return handleSimulate(ctx, args)
	case "aggregate":
		return handleAggregate(ctx, args)
	case "find-gaps":
		return handleFindGaps(ctx, args)
	case "extract-gpkg":
		return handleExtractGeoPackage(ctx, args)
	case "parse-raw":
		return handleParseRaw(args)
	case "export":
		return handleExport(args)
	case "inspect":
		return handleInspect(args)
	case "help", "-h", "--help":
		printUsage()

		return nil
	default:
		printUsage()

		return errors.Errorf("unknown subcommand %q", name)
	}
}

func printUsage() {
	fmt.Println("Usage: roadnet <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  process       Build and simplify a road graph from roads and sensors")
	fmt.Println("  route         Shortest route through waypoints")
	fmt.Println("  travel-time   Route and estimate its travel time")
	fmt.Println("  live-route    Travel time of a route at a series of moments")
	fmt.Println("  reachable     Nodes within a cost budget of a point")
	fmt.Println("  simulate      Travel times under sensor modification scenarios")
	fmt.Println("  aggregate     Load the raw sensor feed into the sensor store")
	fmt.Println("  find-gaps     Report holes in the stored sensor timeline")
	fmt.Println("  extract-gpkg  Extract roads from a GeoPackage into road JSON")
	fmt.Println("  parse-raw     Convert raw road and sensor feeds into processed JSON")
	fmt.Println("  export        Export a processed graph as GeoJSON")
	fmt.Println("  inspect       Print processed graph statistics")
	fmt.Println("")
	fmt.Println("Use 'roadnet <command> -h' for more information about a command.")
}
