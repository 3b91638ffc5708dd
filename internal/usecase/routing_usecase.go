package usecase

import (
	"context"
	"time"

	"roadnet/internal/domain/entity"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/traveltime"
	"roadnet/internal/infra/routing/traversal"

	"github.com/paulmach/orb/geojson"
)

// RouteRequest asks for the cheapest route through the waypoints, in order
type RouteRequest struct {
	Waypoints []traversal.PointQuery `json:"waypoints" validate:"min=2,dive"`
	Metric    traversal.Metric       `json:"metric"`
}

// RouteResult is a route through the road graph
type RouteResult struct {
	Metric    traversal.Metric `json:"metric"`
	Cost      float64          `json:"cost"`
	Unit      string           `json:"unit"`
	DistanceM float64          `json:"distance_m"`
	Nodes     []graph.NodeID   `json:"nodes"`
	// Complete is false when some waypoint was skipped
	Complete bool `json:"complete"`
	// Unresolved lists the indices of waypoints with no matching node
	Unresolved []int `json:"unresolved,omitempty"`
	// Unreached lists resolved waypoint nodes no path led to
	Unreached []graph.NodeID   `json:"unreached,omitempty"`
	Polyline  string           `json:"polyline"`
	Geometry  *geojson.Feature `json:"geometry,omitempty"`
}

// TravelTimeRequest routes through the waypoints and estimates the travel time
type TravelTimeRequest struct {
	RouteRequest
	// Live reads the sensor store instead of the readings baked into the graph
	Live bool `json:"live"`
	// At is the moment of interest for live data; zero means now
	At time.Time `json:"at"`
	// MaxAgeSeconds bounds the age of live readings; zero uses the configured default
	MaxAgeSeconds int                `json:"max_age_seconds" validate:"gte=0"`
	VehicleType   entity.VehicleType `json:"vehicle_type"`
}

// TravelTimeResult is a route with its travel-time estimate
type TravelTimeResult struct {
	Route       *RouteResult        `json:"route"`
	Seconds     float64             `json:"seconds"`
	MissingData bool                `json:"missing_data"`
	Samples     []traveltime.Sample `json:"samples"`
	// SpeedLimitSeconds is the time at the posted limits; absent when some edge is impassable
	SpeedLimitSeconds *float64 `json:"speed_limit_seconds,omitempty"`
}

// ResolvedWaypoint is the node a point query snapped to
type ResolvedWaypoint struct {
	Index     int           `json:"index"`
	Found     bool          `json:"found"`
	Node      graph.NodeID  `json:"node"`
	Point     *entity.Point `json:"point,omitempty"`
	DistanceM float64       `json:"distance_m"`
}

// ReachableRequest asks for every node within a cost budget of a waypoint
type ReachableRequest struct {
	From    traversal.PointQuery `json:"from"`
	MaxCost float64              `json:"max_cost" validate:"gt=0"`
	Metric  traversal.Metric     `json:"metric"`
}

// ReachableNode is a node together with its cost from the start
type ReachableNode struct {
	Node  graph.NodeID `json:"node"`
	Point entity.Point `json:"point"`
	Cost  float64      `json:"cost"`
}

// ReachableResult lists the reachable nodes, cheapest first
type ReachableResult struct {
	Start  graph.NodeID     `json:"start"`
	Metric traversal.Metric `json:"metric"`
	Unit   string           `json:"unit"`
	Nodes  []ReachableNode  `json:"nodes"`
}

// RouteUsecase defines the routing operations served over the loaded graph
type RouteUsecase interface {
	// Route finds the cheapest route through the request's waypoints
	Route(ctx context.Context, req RouteRequest) (*RouteResult, error)

	// TravelTime routes and estimates how long the route takes to drive
	TravelTime(ctx context.Context, req TravelTimeRequest) (*TravelTimeResult, error)

	// ResolveWaypoints snaps each query to a graph node
	ResolveWaypoints(ctx context.Context, queries []traversal.PointQuery) ([]ResolvedWaypoint, error)

	// Reachable lists the nodes within a cost budget of a waypoint
	Reachable(ctx context.Context, req ReachableRequest) (*ReachableResult, error)

	// GraphStats summarises the loaded graph
	GraphStats(ctx context.Context) (graph.Stats, error)

	// IsReady returns whether a graph is loaded
	IsReady() bool
}
