// stress spawns thousands of moving, rotating sprites that collide with
// each other through the stage grid. A stress test for the grove
// collision and render pipeline.
//
// Profiling:
//
//	go run ./demos/stress -headless -profile cpu
//	go tool pprof -http=":8000" cpu.pprof
package main

import (
	"flag"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/phanxgames/grove"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

const (
	screenW = 1280
	screenH = 720
)

func main() {
	count := flag.Int("n", 5000, "number of sprites")
	headless := flag.Bool("headless", false, "step without a window")
	frames := flag.Int("frames", 600, "frames to step in headless mode")
	prof := flag.String("profile", "", "cpu or mem")
	flag.Parse()

	switch *prof {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	cfg := grove.DefaultConfig()
	cfg.Game.Title = "Grove - Stress"
	cfg.Game.Width = screenW
	cfg.Game.Height = screenH
	cfg.Game.Background = "#0f0f17"
	cfg.Stage.GridW, cfg.Stage.GridH = 64, 64
	cfg.Logging.Level = "debug"

	g, err := grove.NewFromConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	g.ShowFPS = true

	var hits int
	g.Scene("stress", func(s *grove.Stage) {
		for range *count {
			spawn(s, &hits)
		}
	}, grove.StageOptions{})
	if _, err := g.StageScene("stress", 0, grove.StageOptions{}); err != nil {
		log.Fatal(err)
	}

	if !*headless {
		if err := g.Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	start := time.Now()
	for range *frames {
		g.StepStages(1.0 / 60)
	}
	elapsed := time.Since(start)
	g.Logger.Info("headless run",
		zap.Int("sprites", *count),
		zap.Int("frames", *frames),
		zap.Duration("elapsed", elapsed),
		zap.Duration("per_frame", elapsed/time.Duration(max(*frames, 1))),
		zap.Int("hits", hits),
	)
}

func spawn(s *grove.Stage, hits *int) {
	size := 4 + rand.Float64()*8
	e := grove.NewMovingSprite(grove.Props{
		X:     rand.Float64() * screenW,
		Y:     rand.Float64() * screenH,
		W:     size,
		H:     size,
		VX:    (rand.Float64() - 0.5) * 240,
		VY:    (rand.Float64() - 0.5) * 240,
		Angle: rand.Float64() * 360,
	})
	e.P.Color = grove.Color{
		R: 0.5 + rand.Float64()*0.5,
		G: 0.5 + rand.Float64()*0.5,
		B: 0.5 + rand.Float64()*0.5,
		A: 1,
	}
	spin := (rand.Float64() - 0.5) * 180
	e.On("step", func(data any) {
		dt, _ := data.(float64)
		p := &e.P
		p.Angle = math.Mod(p.Angle+spin*dt, 360)
		if p.X < 0 || p.X > screenW {
			p.VX = -p.VX
		}
		if p.Y < 0 || p.Y > screenH {
			p.VY = -p.VY
		}
		if col := s.Search(e, 0); col != nil {
			*hits++
		}
	})
	s.MustInsert(e)
}
