package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	pops "github.com/ncsu-landscape-dynamics/pops-core"
)

func main() {
	numCPUPtr := flag.Int("threads", runtime.NumCPU(), "number of CPU threads for multi-instance runs")
	loggerType := flag.String("logger", "csv", "step logger type (csv|sqlite|none)")
	numInstances := flag.Int("instances", 1, "number of independent runs")
	flag.Parse()

	runtime.GOMAXPROCS(*numCPUPtr)

	configPath := flag.Arg(0)
	if configPath == "" {
		log.Fatal("usage: pops-run [flags] <config.toml>")
	}

	conf, err := pops.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}

	res, err := loadResources(conf)
	if err != nil {
		log.Fatal(err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	escaped := make([][4]int, *numInstances)
	horizon := 0
	firstStart := time.Now()
	for i := 1; i <= *numInstances; i++ {
		runID := ksuid.New()
		i, runID := i, runID
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			log.Printf("starting run %03d (%s)\n", i, runID)

			model, err := conf.Build(res)
			if err != nil {
				log.Fatalf("run %03d: error building model: %s", i, err)
			}

			if *loggerType != "none" && conf.Output != nil {
				logger, err := newStepLogger(*loggerType, conf.Output, i)
				if err != nil {
					log.Fatalf("run %03d: error creating logger: %s", i, err)
				}
				model.Logger = logger
				defer logger.Close()
			}

			if err := model.Run(); err != nil {
				log.Fatalf("run %03d: %s", i, err)
			}
			mu.Lock()
			if model.Schedule.Len() > horizon {
				horizon = model.Schedule.Len()
			}
			mu.Unlock()
			if qa := model.QuarantineAction(); qa != nil {
				escaped[i-1] = qa.EscapedSteps()
			}
			log.Printf("finished run %03d in %s\n", i, time.Since(start))
		}()
	}
	wg.Wait()
	log.Printf("completed all %d run(s) in %s.", *numInstances, time.Since(firstStart))

	if conf.Model.UseQuarantine && horizon > 0 {
		logQuarantineSummary(escaped, horizon)
	}
}

// logQuarantineSummary reports, per cardinal direction, the fraction of
// runs that had escaped by the final scheduled step.
func logQuarantineSummary(escaped [][4]int, horizon int) {
	dirNames := [4]string{"N", "S", "E", "W"}
	for dir := 0; dir < 4; dir++ {
		steps := make([]int, len(escaped))
		for i, e := range escaped {
			steps[i] = e[dir]
		}
		probs := pops.QuarantineEscapeProbability(steps, horizon)
		log.Printf("quarantine escape probability (%s) by step %d: %.3f", dirNames[dir], horizon-1, probs[horizon-1])
	}
}

func newStepLogger(kind string, out *pops.OutputConfig, i int) (pops.StepLogger, error) {
	switch kind {
	case "csv":
		return pops.NewCSVStepLogger(out.CSVBasePath, i), nil
	case "sqlite":
		return pops.NewSQLiteStepLogger(out.SQLitePath, i)
	}
	return nil, fmt.Errorf("%s is not a valid logger type (csv|sqlite|none)", kind)
}

// loadResources reads every raster path referenced by conf from disk in
// the driver's plain-text grid format (one row per line, whitespace
// separated values) — raster file I/O is explicitly an external
// collaborator, not a core engine concern.
func loadResources(conf *pops.Config) (pops.Resources, error) {
	res := pops.Resources{
		TotalHosts: make(map[string]*pops.Raster[int]),
		Infected:   make(map[string]*pops.Raster[int]),
		Float:      make(map[string]*pops.Raster[float64]),
		Quarantine: make(map[string]*pops.Raster[int]),
	}

	for _, h := range conf.Model.Hosts {
		total, err := loadIntRaster(h.TotalHostsPath)
		if err != nil {
			return res, err
		}
		res.TotalHosts[h.TotalHostsPath] = total

		infected, err := loadIntRaster(h.InfectedPath)
		if err != nil {
			return res, err
		}
		res.Infected[h.InfectedPath] = infected
	}

	floatPaths := []string{
		conf.Model.WeatherPath, conf.Model.TemperaturePath,
		conf.Model.OtherIndividualsPath, conf.Model.SurvivalRatePath,
	}
	for _, p := range floatPaths {
		if p == "" {
			continue
		}
		r, err := loadFloatRaster(p)
		if err != nil {
			return res, err
		}
		res.Float[p] = r
	}
	for _, t := range conf.Model.Treatments {
		r, err := loadFloatRaster(t.IntensityPath)
		if err != nil {
			return res, err
		}
		res.Float[t.IntensityPath] = r
	}
	if conf.Model.QuarantinePath != "" {
		r, err := loadIntRaster(conf.Model.QuarantinePath)
		if err != nil {
			return res, err
		}
		res.Quarantine[conf.Model.QuarantinePath] = r
	}

	if conf.Kernel != nil && strings.EqualFold(conf.Kernel.Type, "network") {
		nodes, err := os.ReadFile(conf.Kernel.NetworkNodesPath)
		if err != nil {
			return res, err
		}
		segments, err := os.ReadFile(conf.Kernel.NetworkSegmentsPath)
		if err != nil {
			return res, err
		}
		res.NetworkNodes = nodes
		res.NetworkSegments = segments
	}

	return res, nil
}

func loadIntRaster(path string) (*pops.Raster[int], error) {
	rows, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	data := make([][]int, len(rows))
	for i, row := range rows {
		data[i] = make([]int, len(row))
		for j, field := range row {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d col %d: %w", path, i, j, err)
			}
			data[i][j] = v
		}
	}
	return pops.NewRasterFromRows(data)
}

func loadFloatRaster(path string) (*pops.Raster[float64], error) {
	rows, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	data := make([][]float64, len(rows))
	for i, row := range rows {
		data[i] = make([]float64, len(row))
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d col %d: %w", path, i, j, err)
			}
			data[i][j] = v
		}
	}
	return pops.NewRasterFromRows(data)
}

func readGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
