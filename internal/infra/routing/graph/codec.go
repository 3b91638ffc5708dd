package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"

	"github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrUnsupportedFormat is returned for graph files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported graph format")
	// ErrCorruptGraph is returned when decoded data does not describe a valid graph.
	ErrCorruptGraph = errors.New("corrupt graph data")
)

const formatVersion = 1

// Wire records carry the slot id alongside the payload so sparse arenas
// decode with the same ids they were encoded with.

type jsonNode struct {
	ID NodeID `json:"id"`
	Node
}

type jsonEdge struct {
	ID   EdgeID `json:"id"`
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
	Edge
}

type jsonSensors struct {
	Node    NodeID                  `json:"node"`
	Sensors []entity.SensorMetadata `json:"sensors"`
}

type jsonGraph struct {
	Version   int           `json:"version"`
	NodeBound int           `json:"node_bound"`
	EdgeBound int           `json:"edge_bound"`
	Nodes     []jsonNode    `json:"nodes"`
	Edges     []jsonEdge    `json:"edges"`
	Sensors   []jsonSensors `json:"sensors,omitempty"`
}

// EncodeJSON writes pg as JSON.
func EncodeJSON(w io.Writer, pg *ProcessedGraph) error {
	g := pg.Graph
	doc := jsonGraph{
		Version:   formatVersion,
		NodeBound: g.NodeBound(),
		EdgeBound: g.EdgeBound(),
		Nodes:     make([]jsonNode, 0, g.NodeCount()),
		Edges:     make([]jsonEdge, 0, g.EdgeCount()),
	}

	for _, id := range g.NodeIDs() {
		doc.Nodes = append(doc.Nodes, jsonNode{ID: id, Node: g.nodes[id].data})
	}
	for _, id := range g.EdgeIDs() {
		slot := g.edges[id]
		doc.Edges = append(doc.Edges, jsonEdge{ID: id, From: slot.from, To: slot.to, Edge: slot.data})
	}
	for _, id := range pg.Sensors.Nodes() {
		doc.Sensors = append(doc.Sensors, jsonSensors{Node: id, Sensors: pg.Sensors[id]})
	}

	return errors.Wrap(json.NewEncoder(w).Encode(doc), "encode graph json")
}

// DecodeJSON reads a graph written by EncodeJSON.
func DecodeJSON(r io.Reader) (*ProcessedGraph, error) {
	var doc jsonGraph
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode graph json")
	}

	g, err := restore(doc.NodeBound, doc.EdgeBound, len(doc.Nodes), len(doc.Edges),
		func(i int) (NodeID, Node) { return doc.Nodes[i].ID, doc.Nodes[i].Node },
		func(i int) (EdgeID, NodeID, NodeID, Edge) {
			e := doc.Edges[i]

			return e.ID, e.From, e.To, e.Edge
		})
	if err != nil {
		return nil, err
	}

	pg := NewProcessed(g)
	for _, s := range doc.Sensors {
		pg.Sensors[s.Node] = s.Sensors
	}

	return pg, nil
}

// The binary codec avoids pointers; optional values travel with a flag.

type binNode struct {
	ID             int32
	Point          entity.Point
	Direction      int8
	HasSensor      bool
	Sensor         entity.SensorSample
	MainNumber     int32
	SubNumber      int32
	OriginalRoadID int32
	Heading        float64
	IsCap          bool
}

type binEdge struct {
	ID             int32
	From           int32
	To             int32
	Distance       float64
	MainNumber     int32
	SubNumber      int32
	Polyline       []entity.Point
	IsConnector    bool
	Midpoint       entity.Point
	Direction      int8
	OriginalRoadID int32
	HasSpeedLimit  bool
	SpeedLimit     float64
}

type binSensors struct {
	Node    int32
	Sensors []entity.SensorMetadata
}

type binGraph struct {
	Version   int32
	NodeBound int32
	EdgeBound int32
	Nodes     []binNode
	Edges     []binEdge
	Sensors   []binSensors
}

// EncodeBinary serialises pg with kelindar/binary.
func EncodeBinary(pg *ProcessedGraph) ([]byte, error) {
	g := pg.Graph
	doc := binGraph{
		Version:   formatVersion,
		NodeBound: int32(g.NodeBound()),
		EdgeBound: int32(g.EdgeBound()),
		Nodes:     make([]binNode, 0, g.NodeCount()),
		Edges:     make([]binEdge, 0, g.EdgeCount()),
	}

	for _, id := range g.NodeIDs() {
		n := g.nodes[id].data
		bn := binNode{
			ID:             int32(id),
			Point:          n.Point,
			Direction:      int8(n.Direction),
			MainNumber:     n.MainNumber,
			SubNumber:      n.SubNumber,
			OriginalRoadID: n.OriginalRoadID,
			Heading:        n.Heading,
			IsCap:          n.IsCap,
		}
		if n.Sensor != nil {
			bn.HasSensor = true
			bn.Sensor = *n.Sensor
		}
		doc.Nodes = append(doc.Nodes, bn)
	}

	for _, id := range g.EdgeIDs() {
		slot := g.edges[id]
		e := slot.data
		be := binEdge{
			ID:             int32(id),
			From:           int32(slot.from),
			To:             int32(slot.to),
			Distance:       e.Distance,
			MainNumber:     e.MainNumber,
			SubNumber:      e.SubNumber,
			Polyline:       e.Polyline,
			IsConnector:    e.IsConnector,
			Midpoint:       e.Midpoint,
			Direction:      int8(e.Direction),
			OriginalRoadID: e.OriginalRoadID,
		}
		if e.SpeedLimit != nil {
			be.HasSpeedLimit = true
			be.SpeedLimit = *e.SpeedLimit
		}
		doc.Edges = append(doc.Edges, be)
	}

	for _, id := range pg.Sensors.Nodes() {
		doc.Sensors = append(doc.Sensors, binSensors{Node: int32(id), Sensors: pg.Sensors[id]})
	}

	data, err := binary.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode graph binary")
	}

	return data, nil
}

// DecodeBinary reads a graph written by EncodeBinary.
func DecodeBinary(data []byte) (*ProcessedGraph, error) {
	var doc binGraph
	if err := binary.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrCorruptGraph, err.Error())
	}
	if doc.Version != formatVersion {
		return nil, errors.Wrapf(ErrCorruptGraph, "format version %d", doc.Version)
	}

	g, err := restore(int(doc.NodeBound), int(doc.EdgeBound), len(doc.Nodes), len(doc.Edges),
		func(i int) (NodeID, Node) {
			bn := doc.Nodes[i]
			n := Node{
				Point:          bn.Point,
				Direction:      entity.RoadDirection(bn.Direction),
				MainNumber:     bn.MainNumber,
				SubNumber:      bn.SubNumber,
				OriginalRoadID: bn.OriginalRoadID,
				Heading:        bn.Heading,
				IsCap:          bn.IsCap,
			}
			if bn.HasSensor {
				sensor := bn.Sensor
				n.Sensor = &sensor
			}

			return NodeID(bn.ID), n
		},
		func(i int) (EdgeID, NodeID, NodeID, Edge) {
			be := doc.Edges[i]
			e := Edge{
				Distance:       be.Distance,
				MainNumber:     be.MainNumber,
				SubNumber:      be.SubNumber,
				Polyline:       be.Polyline,
				IsConnector:    be.IsConnector,
				Midpoint:       be.Midpoint,
				Direction:      entity.RoadDirection(be.Direction),
				OriginalRoadID: be.OriginalRoadID,
			}
			if be.HasSpeedLimit {
				limit := be.SpeedLimit
				e.SpeedLimit = &limit
			}

			return EdgeID(be.ID), NodeID(be.From), NodeID(be.To), e
		})
	if err != nil {
		return nil, err
	}

	pg := NewProcessed(g)
	for _, s := range doc.Sensors {
		pg.Sensors[NodeID(s.Node)] = s.Sensors
	}

	return pg, nil
}

// restore rebuilds a sparse arena from id-tagged records.
func restore(
	nodeBound, edgeBound, nodeCount, edgeCount int,
	nodeAt func(i int) (NodeID, Node),
	edgeAt func(i int) (EdgeID, NodeID, NodeID, Edge),
) (*Graph, error) {
	if nodeBound < nodeCount || edgeBound < edgeCount {
		return nil, errors.Wrap(ErrCorruptGraph, "bounds smaller than record counts")
	}

	g := &Graph{
		nodes: make([]nodeSlot, nodeBound),
		edges: make([]edgeSlot, edgeBound),
	}

	for i := range nodeCount {
		id, n := nodeAt(i)
		if id < 0 || int(id) >= nodeBound || g.nodes[id].valid {
			return nil, errors.Wrapf(ErrCorruptGraph, "node id %d", id)
		}
		g.nodes[id] = nodeSlot{data: n, valid: true}
		g.nodeCount++
	}

	for i := range edgeCount {
		id, from, to, e := edgeAt(i)
		if id < 0 || int(id) >= edgeBound || g.edges[id].valid {
			return nil, errors.Wrapf(ErrCorruptGraph, "edge id %d", id)
		}
		if !g.HasNode(from) || !g.HasNode(to) {
			return nil, errors.Wrapf(ErrCorruptGraph, "edge %d references missing node", id)
		}
		g.edges[id] = edgeSlot{data: e, from: from, to: to, valid: true}
		g.edgeCount++
	}

	// rebuild adjacency in edge id order so it matches the encoder's graph
	for _, id := range g.EdgeIDs() {
		slot := g.edges[id]
		g.nodes[slot.from].out = append(g.nodes[slot.from].out, id)
		g.nodes[slot.to].in = append(g.nodes[slot.to].in, id)
	}

	return g, nil
}

// Format is an on-disk graph encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatBinary
	FormatBinaryZstd
)

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".bin.zst"):
		return FormatBinaryZstd, nil
	case strings.HasSuffix(path, ".bin"):
		return FormatBinary, nil
	case strings.HasSuffix(path, ".json"):
		return FormatJSON, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

// Encode writes pg to w in the given format.
func Encode(w io.Writer, pg *ProcessedGraph, format Format) error {
	switch format {
	case FormatJSON:
		return EncodeJSON(w, pg)
	case FormatBinary, FormatBinaryZstd:
		data, err := EncodeBinary(pg)
		if err != nil {
			return err
		}
		if format == FormatBinary {
			_, err = w.Write(data)

			return errors.Wrap(err, "write graph")
		}

		return compress(w, data)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "format %d", format)
	}
}

// Decode reads a graph from r in the given format.
func Decode(r io.Reader, format Format) (*ProcessedGraph, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatBinary:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "read graph")
		}

		return DecodeBinary(data)
	case FormatBinaryZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "create zstd decoder")
		}
		defer dec.Close()

		data, err := io.ReadAll(dec)
		if err != nil {
			return nil, errors.Wrap(ErrCorruptGraph, err.Error())
		}

		return DecodeBinary(data)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %d", format)
	}
}

func compress(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return errors.Wrap(err, "create zstd encoder")
	}

	if _, err := io.Copy(enc, bytes.NewReader(data)); err != nil {
		enc.Close()

		return errors.Wrap(err, "compress graph")
	}

	return errors.Wrap(enc.Close(), "flush zstd encoder")
}

// WriteFile stores pg at path, choosing the encoding from the extension.
func WriteFile(path string, pg *ProcessedGraph) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.InFile(err, "create graph", path)
	}

	if err := Encode(f, pg, format); err != nil {
		f.Close()

		return err
	}

	return errors.InFile(f.Close(), "close graph", path)
}

// ReadFile loads a graph stored by WriteFile.
func ReadFile(path string) (*ProcessedGraph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.InFile(err, "open graph", path)
	}
	defer f.Close()

	return Decode(f, format)
}
