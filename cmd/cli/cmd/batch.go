package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucrparlay/pasgal-go/internal/bcc"
	"github.com/ucrparlay/pasgal-go/internal/bfs"
	"github.com/ucrparlay/pasgal-go/internal/connectivity"
	"github.com/ucrparlay/pasgal-go/internal/kcore"
	"github.com/ucrparlay/pasgal-go/internal/scc"
	"github.com/ucrparlay/pasgal-go/internal/sssp"
	"github.com/ucrparlay/pasgal-go/internal/store"
	"github.com/ucrparlay/pasgal-go/pkg/parallel"
)

// batchJob describes one algorithm invocation read from a batch file.
type batchJob struct {
	Algorithm string `json:"algorithm"`
	Graph     string `json:"graph"`
	Source    uint32 `json:"source,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
}

// batchOutcome is the per-job result reported back to the caller.
type batchOutcome struct {
	Job      batchJob    `json:"job"`
	Result   interface{} `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
	Duration string      `json:"duration"`
}

var (
	batchFile    string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run several algorithms concurrently over a set of graphs",
	Long: `Run a list of (algorithm, graph) jobs from a JSON batch file concurrently,
bounded by --workers. The batch file holds one JSON array of jobs:

  [{"algorithm": "bfs", "graph": "./a.adj", "source": 0},
   {"algorithm": "kcore", "graph": "./b.adj"}]`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	binName := BinName()
	batchCmd.Example = `  # Run a batch of jobs with up to 4 concurrent workers
  ` + binName + ` batch -f ./jobs.json -w 4`

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "Path to a JSON file listing batch jobs (required)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Maximum concurrent jobs (default: runtime.NumCPU clamped to 2..8)")
	batchCmd.MarkFlagRequired("file")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	data, err := os.ReadFile(batchFile)
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}
	var jobs []batchJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return fmt.Errorf("failed to parse batch file: %w", err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("batch file %s contains no jobs", batchFile)
	}

	poolCfg := parallel.DefaultPoolConfig().WithMetrics()
	if batchWorkers > 0 {
		poolCfg = poolCfg.WithWorkers(batchWorkers)
	}
	pool := parallel.NewWorkerPool[batchJob, batchOutcome](poolCfg)

	tracker := parallel.NewProgressTracker(int64(len(jobs)), func(done, total int64) {
		log.Info("batch progress: %d/%d", done, total)
	}, 2*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tracker.Start(ctx)
	defer tracker.Stop()

	results := pool.ExecuteFunc(ctx, jobs, func(ctx context.Context, job batchJob) (batchOutcome, error) {
		outcome := runBatchJob(job)
		tracker.Increment()
		return outcome, nil
	})

	outcomes := make([]batchOutcome, len(results))
	failed := 0
	for i, r := range results {
		outcomes[i] = r.Result
		outcomes[i].Duration = r.Duration.String()
		if outcomes[i].Error != "" {
			failed++
		}
	}

	metrics := pool.Metrics()
	log.Info("batch finished: %d jobs, %d failed, total %s", len(jobs), failed, metrics.TotalDuration)

	emitResult(map[string]interface{}{
		"jobs":    outcomes,
		"failed":  failed,
		"metrics": metrics,
	})
	return nil
}

// runBatchJob dispatches and executes a single batch job, returning its
// outcome rather than an error so a single bad job never aborts the batch.
func runBatchJob(job batchJob) batchOutcome {
	g, gt, err := loadGraph(job.Graph)
	if err != nil {
		return batchOutcome{Job: job, Error: err.Error()}
	}

	var result interface{}
	var algo store.Algorithm

	switch job.Algorithm {
	case "bfs":
		algo = store.AlgorithmBFS
		res := bfs.Run(g, gt, job.Source)
		result = map[string]interface{}{"source": job.Source, "dist": res.Dist}
	case "sssp":
		algo = store.AlgorithmSSSP
		res := sssp.Run(g, gt, job.Source, sssp.RhoStepping{Rho: 1, NumSamples: 32})
		result = map[string]interface{}{"source": job.Source, "dist": res.Dist}
	case "kcore":
		algo = store.AlgorithmKCore
		res := kcore.Run(g)
		result = map[string]interface{}{"coreness": res.Coreness}
	case "scc":
		algo = store.AlgorithmSCC
		seed := job.Seed
		if seed == 0 {
			seed = 1
		}
		res := scc.Run(g, gt, rand.New(rand.NewSource(seed)))
		result = map[string]interface{}{"label": res.Label}
	case "connectivity":
		algo = store.AlgorithmConnectivity
		res := connectivity.Run(g, gt, connectivity.DefaultOptions())
		result = map[string]interface{}{"label": res.Label}
	case "bcc":
		algo = store.AlgorithmBCC
		opt := connectivity.DefaultOptions()
		opt.WantForest = true
		connRes := connectivity.Run(g, gt, opt)
		res := bcc.Run(g, connRes.Forest)
		result = map[string]interface{}{"label": res.Label}
	default:
		return batchOutcome{Job: job, Error: fmt.Sprintf("unknown algorithm: %q", job.Algorithm)}
	}

	persistRun(algo, job.Graph, g, map[string]interface{}{"source": job.Source}, result)
	return batchOutcome{Job: job, Result: result}
}
