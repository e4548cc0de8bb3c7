package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apihttp "empiremap/api/api/http"
	"empiremap/api/api/http/controller/home"
	"empiremap/api/log"
	"empiremap/api/service"
	"empiremap/api/service/geojson"
	"empiremap/api/system"
	"empiremap/api/thirdpart"
)

func main() {
	once := flag.Bool("once", false, "generate the map once, write the output file and exit")
	flag.Parse()

	if err := system.Init(); err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	cfg := system.GetConfig()
	log.Init(cfg.Server.LogFile, cfg.Map.Verbose)

	limiter := thirdpart.NewRateLimiter(cfg.BitJita.RatePerMin, 0)
	client := thirdpart.NewBitJitaClient(cfg.BitJita.BaseURL, cfg.BitJita.UserAgent, limiter)

	gen := service.NewGenerator(client, service.Options{
		Workers:            cfg.BitJita.Workers,
		Throttle:           time.Duration(cfg.BitJita.ThrottleMs) * time.Millisecond,
		LimitEmpires:       cfg.Map.LimitEmpires,
		MaxTowersPerEmpire: cfg.Map.MaxTowersPerEmpire,
		ForcePairwise:      cfg.Map.ForcePairwise,
		Verbose:            cfg.Map.Verbose,
		ColorStorePath:     cfg.Map.ColorStore,
		OutputPath:         cfg.Map.Output,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if _, err := gen.Run(ctx, geojson.Assemble); err != nil {
			log.Error("generation error: ", err)
			os.Exit(1)
		}
		return
	}

	home.Init(gen)
	go gen.Loop(ctx, time.Duration(cfg.Map.RefreshMinutes)*time.Minute, geojson.Assemble)

	engine := gin.Default()
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	apiGroup := engine.Group("/api")
	apihttp.Routers(apiGroup)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Error("server error: ", err)
		os.Exit(1)
	}
}
