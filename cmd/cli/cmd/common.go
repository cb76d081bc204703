package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ucrparlay/pasgal-go/internal/storage"
	"github.com/ucrparlay/pasgal-go/internal/store"
	"github.com/ucrparlay/pasgal-go/pkg/compression"
	"github.com/ucrparlay/pasgal-go/pkg/pgraph"
	"github.com/ucrparlay/pasgal-go/pkg/writer"
)

// loadGraph reads a graph from path and returns it alongside its
// transpose. If the graph is already symmetrized the transpose is the
// graph itself; directed formats get an explicit pgraph.Transpose.
func loadGraph(path string) (g, gt *pgraph.Graph, err error) {
	g, err = pgraph.ReadGraph(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read graph: %w", err)
	}
	if validateGraph {
		if err := g.Validate(); err != nil {
			return nil, nil, fmt.Errorf("graph failed validation: %w", err)
		}
	}
	if g.Symmetrized {
		gt = g
	} else {
		gt = pgraph.Transpose(g)
	}
	return g, gt, nil
}

// persistRun records a completed algorithm run in the configured store
// when --db is set. Failures are logged, not fatal: the CLI still
// prints the result to stdout regardless of persistence.
func persistRun(algorithm store.Algorithm, graphPath string, g *pgraph.Graph, params, result interface{}) {
	if !persistToDB {
		return
	}

	gormDB, err := store.NewGormDB(&cfg.Database)
	if err != nil {
		GetLogger().Warn("failed to open database, skipping persistence: %v", err)
		return
	}
	stores := store.NewStores(gormDB)
	defer stores.Close()

	paramsJSON, _ := json.Marshal(params)
	resultJSON, _ := json.Marshal(result)

	now := time.Now()
	run := &store.Run{
		RunUUID:     newRunUUID(),
		Algorithm:   algorithm,
		Status:      store.StatusRunning,
		GraphPath:   graphPath,
		Params:      store.JSONField(paramsJSON),
		VertexCount: int64(g.N),
		EdgeCount:   int64(g.M),
		BeginTime:   &now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := stores.Run.CreateRun(ctx, run); err != nil {
		GetLogger().Warn("failed to create run record: %v", err)
		return
	}
	if err := stores.Run.CompleteRun(ctx, run.RunUUID, store.JSONField(resultJSON)); err != nil {
		GetLogger().Warn("failed to complete run record: %v", err)
		return
	}
	GetLogger().Info("run recorded: %s", run.RunUUID)

	if archiveRun {
		archiveResult(run.RunUUID, resultJSON)
	}
}

// archiveResult ships a zstd-compressed copy of the result payload to the
// configured object store (local disk or COS) under runs/<uuid>.json.zst.
// Best-effort: archiving failures are logged, never fatal.
func archiveResult(runUUID string, resultJSON []byte) {
	backend, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		GetLogger().Warn("failed to open result archive, skipping: %v", err)
		return
	}

	comp := compression.Default()
	defer compression.Close(comp)
	compressed, err := comp.Compress(resultJSON)
	if err != nil {
		GetLogger().Warn("failed to compress result for archiving: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("runs/%s.json.zst", runUUID)
	if err := backend.Upload(ctx, key, bytes.NewReader(compressed)); err != nil {
		GetLogger().Warn("failed to archive result to %s: %v", key, err)
		return
	}
	GetLogger().Info("result archived to %s", key)
}

func newRunUUID() string {
	return fmt.Sprintf("run-%s", time.Now().Format("20060102-150405.000000"))
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

// emitResult prints the result to stdout, or writes it to --output when set.
// A ".gz" suffix gzips the JSON rather than writing it plain.
func emitResult(result interface{}) {
	if outputPath == "" {
		printJSON(result)
		return
	}

	if strings.HasSuffix(outputPath, ".gz") {
		w := writer.NewGzipWriter[interface{}]()
		if err := w.WriteToFile(result, outputPath); err != nil {
			GetLogger().Warn("failed to write gzipped result to %s: %v", outputPath, err)
			printJSON(result)
			return
		}
	} else {
		w := writer.NewPrettyJSONWriter[interface{}]()
		if err := w.WriteToFile(result, outputPath); err != nil {
			GetLogger().Warn("failed to write result to %s: %v", outputPath, err)
			printJSON(result)
			return
		}
	}
	GetLogger().Info("result written to %s", outputPath)
}

var persistToDB bool
var archiveRun bool
