package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/golang/glog"

	"pointquadtree/config"
	"pointquadtree/quadtree"
	"pointquadtree/server"
	"pointquadtree/simulation"
)

const statsInterval = 5 * time.Second

var configDir = flag.String("config_dir", ".", "directory holding config.yaml")

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configDir)
	if err != nil {
		glog.Fatalf("loading config: %v", err)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	world := simulation.NewWorld(simulation.Options{
		Boundary:        quadtree.PositiveQuadrantBox(cfg.World.Width, cfg.World.Height),
		Capacity:        cfg.Tree.Capacity,
		Seed:            seed,
		MaxSpeed:        cfg.Sim.MaxSpeed,
		InsertRate:      cfg.Sim.InsertRate,
		CollisionRadius: cfg.Sim.CollisionRadius,
	})
	for i := 0; i < cfg.Sim.InitialPoints; i++ {
		world.AddRandom()
	}
	glog.Infof("world %vx%v, node capacity %d, %d points, seed %d",
		cfg.World.Width, cfg.World.Height, cfg.Tree.Capacity, world.Len(), seed)

	srv := server.New(world)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(os.Stdout),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		glog.Infof("starting HTTP server on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("HTTP server error: %v", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		world.Run(ctx, cfg.Sim.Tick, nil)
	}()
	go func() {
		defer wg.Done()
		broadcast := time.NewTicker(cfg.Sim.Broadcast)
		defer broadcast.Stop()
		stats := time.NewTicker(statsInterval)
		defer stats.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-broadcast.C:
				srv.Broadcast()
			case <-stats.C:
				logStats(world, srv)
			}
		}
	}()

	<-ctx.Done()
	glog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		glog.Warningf("HTTP shutdown: %v", err)
	}
	srv.Close()
	wg.Wait()
}

func logStats(world *simulation.World, srv *server.Server) {
	snap := world.Snapshot()
	s := snap.Stats
	glog.Infof("points=%d depth=%d partitions=%d clients=%d ticks=%d inserted=%d removed=%d escaped=%d queries=%d avg_query=%v",
		len(snap.Points), snap.Depth, len(snap.Partitions), srv.Clients(),
		s.Ticks, s.Inserted, s.Removed, s.Escaped, s.Queries, s.AvgQueryTime)
}
