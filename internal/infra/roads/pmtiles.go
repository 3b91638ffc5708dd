package roads

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"roadnet/internal/domain/entity"
	"roadnet/internal/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/protomaps/go-pmtiles/pmtiles"
)

const (
	// DefaultPMTilesZoom is the zoom level road tiles are fetched at.
	DefaultPMTilesZoom = 14
	pmtilesCacheSize   = 64
)

// ErrTileNotFound is returned when the archive has no tile at the requested position.
var ErrTileNotFound = errors.New("tile not found")

// PMTilesSource reads roads from the vector tiles of a PMTiles archive. The
// archive may be a local file, an http(s) URL or a cloud bucket URL.
type PMTilesSource struct {
	server  *pmtiles.Server
	tileset string
	zoom    maptile.Zoom
	reader  *MVTReader
}

// OpenPMTiles opens the archive at source. A zero zoom uses DefaultPMTilesZoom.
func OpenPMTiles(source, layer string, zoom int) (*PMTilesSource, error) {
	if source == "" {
		return nil, errors.New("pmtiles source is required")
	}
	if zoom <= 0 {
		zoom = DefaultPMTilesZoom
	}

	bucket, tileset := parseSourcePath(source)
	server, err := pmtiles.NewServer(bucket, "", log.New(io.Discard, "", 0), pmtilesCacheSize, "")
	if err != nil {
		return nil, errors.Wrap(err, "create pmtiles server")
	}
	server.Start()

	return &PMTilesSource{
		server:  server,
		tileset: tileset,
		zoom:    maptile.Zoom(zoom),
		reader:  NewMVTReader(layer),
	}, nil
}

// Roads returns the roads of every tile covering bound. Missing tiles are skipped.
func (s *PMTilesSource) Roads(ctx context.Context, bound orb.Bound) ([]entity.RoadSegment, error) {
	var out []entity.RoadSegment
	for _, tile := range tilesForBound(bound, s.zoom) {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		data, err := s.fetchTile(ctx, tile)
		if errors.Is(err, ErrTileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		roads, err := s.reader.ParseTile(data, tile)
		if err != nil {
			return nil, errors.Wrapf(err, "tile %d/%d/%d", tile.Z, tile.X, tile.Y)
		}
		out = append(out, roads...)
	}

	return out, nil
}

func (s *PMTilesSource) fetchTile(ctx context.Context, tile maptile.Tile) ([]byte, error) {
	path := fmt.Sprintf("/%s/%d/%d/%d.mvt", s.tileset, tile.Z, tile.X, tile.Y)

	status, _, data := s.server.Get(ctx, path)
	switch status {
	case http.StatusOK:
		return data, nil
	case http.StatusNotFound, http.StatusNoContent:
		return nil, ErrTileNotFound
	}

	return nil, errors.Errorf("fetch %s: unexpected status %d", path, status)
}

// parseSourcePath splits an archive location into the bucket the server
// reads from and the tileset name it is addressed by.
//   - "/data/roads.pmtiles" -> ("file:///data", "roads")
//   - "https://example.com/tiles/roads.pmtiles" -> ("https://example.com/tiles", "roads")
func parseSourcePath(source string) (bucket, tileset string) {
	if strings.Contains(source, "://") && !strings.HasPrefix(source, "file://") {
		i := strings.LastIndex(source, "/")

		return source[:i], strings.TrimSuffix(source[i+1:], ".pmtiles")
	}

	path := strings.TrimPrefix(source, "file://")

	return "file://" + filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ".pmtiles")
}

// tilesForBound lists the tiles at zoom that cover bound.
func tilesForBound(bound orb.Bound, zoom maptile.Zoom) []maptile.Tile {
	minTile := maptile.At(orb.Point{bound.Min.Lon(), bound.Max.Lat()}, zoom)
	maxTile := maptile.At(orb.Point{bound.Max.Lon(), bound.Min.Lat()}, zoom)

	tiles := make([]maptile.Tile, 0, int(maxTile.X-minTile.X+1)*int(maxTile.Y-minTile.Y+1))
	for x := minTile.X; x <= maxTile.X; x++ {
		for y := minTile.Y; y <= maxTile.Y; y++ {
			tiles = append(tiles, maptile.Tile{X: x, Y: y, Z: zoom})
		}
	}

	return tiles
}

// ReadPMTiles reads the roads inside bound from the archive at source.
func ReadPMTiles(ctx context.Context, source string, bound orb.Bound, opts Options) ([]entity.RoadSegment, error) {
	src, err := OpenPMTiles(source, opts.MVTLayer, opts.PMTilesZoom)
	if err != nil {
		return nil, err
	}

	return src.Roads(ctx, bound)
}
