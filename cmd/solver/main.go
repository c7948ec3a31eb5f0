package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/dto"
	"github.com/yossefc/school-scheduler-parallel-sub000/internal/engine"
	"github.com/yossefc/school-scheduler-parallel-sub000/pkg/config"
	"github.com/yossefc/school-scheduler-parallel-sub000/pkg/logger"
	"github.com/yossefc/school-scheduler-parallel-sub000/pkg/metrics"
)

func main() {
	inputPath := flag.String("input", "", "path to a JSON solve request")
	analyze := flag.Bool("analyze", false, "score an existing timetable instead of solving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if *inputPath == "" {
		logr.Sugar().Fatalw("missing required flag", "flag", "input")
	}
	payload, err := os.ReadFile(*inputPath)
	if err != nil {
		logr.Sugar().Fatalw("failed to read input", "path", *inputPath, "error", err)
	}

	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	solver := engine.New(engineConfig(cfg), logr, recorder)

	var result any
	if *analyze {
		var req dto.AnalyzeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			logr.Sugar().Fatalw("failed to decode analyze request", "error", err)
		}
		result, err = solver.AnalyzeQuality(req)
	} else {
		var req dto.SolveRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			logr.Sugar().Fatalw("failed to decode solve request", "error", err)
		}
		result, err = solver.Solve(context.Background(), req)
	}
	if err != nil {
		logr.Sugar().Fatalw("run failed", "error", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logr.Sugar().Fatalw("failed to encode result", "error", err)
	}
	fmt.Println(string(encoded))
}

func engineConfig(cfg *config.Config) engine.Config {
	order := make([]engine.FallbackLevel, 0, len(cfg.Engine.FallbackOrder))
	for _, level := range cfg.Engine.FallbackOrder {
		order = append(order, engine.FallbackLevel(level))
	}
	return engine.Config{
		Weights: engine.Weights{
			Block:   cfg.Engine.WeightBlock,
			Group:   cfg.Engine.WeightGroup,
			Gap:     cfg.Engine.WeightGap,
			Morning: cfg.Engine.WeightMorning,
		},
		Budget:             cfg.Engine.Budget,
		Workers:            cfg.Engine.Workers,
		Seed:               cfg.Engine.Seed,
		FallbackOrder:      order,
		MorningPeriodLimit: cfg.Engine.MorningPeriodLimit,
	}
}
