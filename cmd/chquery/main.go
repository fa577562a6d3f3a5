package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/config"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/engine"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/writer"
	"github.com/sirupsen/logrus"
)

var (
	graphFile = flag.String("f", "graph.ch", "contraction hierarchies graph file")
	demo      = flag.Bool("demo", false, "write a small demo graph of Surakarta to -f and exit")
	srcLat    = flag.Float64("srclat", 0, "source latitude")
	srcLon    = flag.Float64("srclon", 0, "source longitude")
	dstLat    = flag.Float64("dstlat", 0, "destination latitude, omit for a nearest vertex query")
	dstLon    = flag.Float64("dstlon", 0, "destination longitude")
	radius    = flag.Float64("radius", 1000, "snapping radius in meters")
	timeout   = flag.Duration("timeout", 5*time.Second, "query timeout")
	noMmap    = flag.Bool("nommap", false, "read blocks with pread instead of mmap")
	verbose   = flag.Bool("v", false, "debug logging")
)

type output struct {
	Found      bool                      `json:"found"`
	Weight     uint64                    `json:"weight,omitempty"`
	Distance   float64                   `json:"distance,omitempty"`
	Polyline   string                    `json:"polyline,omitempty"`
	Streets    []string                  `json:"streets,omitempty"`
	Vertex     *datastructure.Vertex     `json:"vertex,omitempty"`
	Stats      *datastructure.QueryStats `json:"stats,omitempty"`
	CacheStats map[string]int64          `json:"cache,omitempty"`
}

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.GraphFile = *graphFile
	cfg.UseMmap = !*noMmap
	if *verbose {
		cfg.LogLevel = "debug"
	}
	log := cfg.Logger()

	if *demo {
		if err := writeDemo(cfg.GraphFile); err != nil {
			log.WithError(err).Fatal("failed to write demo graph")
		}
		log.WithField("path", cfg.GraphFile).Info("demo graph written")
		return
	}

	eng, err := engine.Open(cfg.GraphFile, cfg.GraphOptions(log, nil))
	if err != nil {
		log.WithError(err).Fatal("failed to open graph")
	}
	defer eng.Close()

	out, err := query(eng)
	if err != nil {
		log.WithError(err).Fatal("query failed")
	}
	cs := eng.CacheStats()
	out.CacheStats = map[string]int64{
		"hits":   int64(cs.Hits),
		"misses": int64(cs.Misses),
		"bytes":  cs.UsedBytes,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.WithError(err).Fatal("failed to write output")
	}
}

func query(eng *engine.Engine) (output, error) {
	src, ok, err := eng.NearestVertex(*srcLat, *srcLon, *radius)
	if err != nil || !ok {
		return output{}, err
	}
	if *dstLat == 0 && *dstLon == 0 {
		return output{Found: true, Vertex: &src}, nil
	}
	dst, ok, err := eng.NearestVertex(*dstLat, *dstLon, *radius)
	if err != nil || !ok {
		return output{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	route, err := eng.ShortestPath(ctx, src.ID, dst.ID)
	if err != nil {
		return output{}, err
	}
	out := output{
		Found:    route.Found,
		Weight:   route.Weight,
		Distance: route.DistanceMeters,
		Polyline: route.Polyline,
		Stats:    &route.Stats,
	}
	for _, e := range route.Edges {
		if e.Name == "" {
			continue
		}
		if n := len(out.Streets); n == 0 || out.Streets[n-1] != e.Name {
			out.Streets = append(out.Streets, e.Name)
		}
	}
	return out, nil
}

// writeDemo writes a tiny hand contracted graph around Surakarta.
func writeDemo(path string) error {
	bld := writer.NewBuilder(writer.DefaultParams())
	coord := datastructure.NewCoordinate

	// level = contraction order
	purwosari := bld.AddVertex(0, coord(-7.5623, 110.7962), 0)
	gladag := bld.AddVertex(0, coord(-7.5755, 110.8243), 1)
	pasarGede := bld.AddVertex(0, coord(-7.5686, 110.8297), 2)
	manahan := bld.AddVertex(1, coord(-7.5556, 110.8067), 3)
	balapan := bld.AddVertex(1, coord(-7.5565, 110.8211), 4)
	jebres := bld.AddVertex(1, coord(-7.5617, 110.8372), 5)

	bld.AddRoad(purwosari, manahan, 240, true, writer.Road{StreetType: 3, Name: "Jalan Adi Sucipto"})
	bld.AddRoad(purwosari, gladag, 420, true, writer.Road{StreetType: 2, Name: "Jalan Slamet Riyadi", Ref: "AH2"})
	bld.AddRoad(gladag, pasarGede, 130, true, writer.Road{
		StreetType: 4,
		Name:       "Jalan Jenderal Sudirman",
		Waypoints:  []datastructure.Coordinate{coord(-7.5720, 110.8262)},
	})
	bld.AddRoad(manahan, balapan, 210, true, writer.Road{StreetType: 3, Name: "Jalan Monginsidi"})
	bld.AddRoad(pasarGede, balapan, 180, true, writer.Road{StreetType: 4, Name: "Jalan Urip Sumoharjo"})
	bld.AddRoad(balapan, jebres, 200, true, writer.Road{StreetType: 5, Name: "Jalan Ir. Sutami"})
	bld.AddRoad(gladag, jebres, 380, false, writer.Road{StreetType: 4, Name: "Jalan Kapten Mulyadi"})

	// contracting purwosari; gladag and later vertices all have witnesses
	bld.AddInternalShortcut(manahan, gladag, purwosari, 660, true)

	if err := bld.WriteFile(path); err != nil {
		return err
	}
	logrus.WithField("vertices", 6).Debug("demo graph built")
	return nil
}
