package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/evacsys/evacroute/router"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 1000, "the random routing count for benchmark")
	benchmarkSeed  = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
)

// runBenchmark measures raw planner throughput over random area pairs of the
// loaded map.
func runBenchmark(r *router.Router, data *router.MapData) {
	log.Logger.SetLevel(logrus.WarnLevel)
	e := rand.New(rand.NewSource(*benchmarkSeed))

	areas := lo.Uniq(lo.Map(data.Nodes, func(n router.NodeRecord, _ int) int32 {
		return n.AreaID
	}))
	if len(areas) < 2 {
		log.Fatal("benchmark needs at least two areas")
	}

	start := time.Now()
	success := 0
	for i := 0; i < *benchmarkCount; i++ {
		from := areas[e.Intn(len(areas))]
		to := areas[e.Intn(len(areas))]
		if _, err := r.FindPath(from, to); err == nil {
			success++
		}
	}
	timeCost := time.Since(start)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(*benchmarkCount), "\n",
		"success:", success, "\n",
	)
}
