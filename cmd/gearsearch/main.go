package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"gearsearch/gear"
	"gearsearch/loader"
)

// resultView is the JSON-serializable shape of one ranked candidate
// (spec §4.9's ResultDetail, flattened for the CLI's -json output).
type resultView struct {
	ID                          string            `json:"id"`
	Value                       float64           `json:"value"`
	Indicators                  map[string]string `json:"indicators"`
	EffectivePositiveValues     map[string]string `json:"effectivePositiveValues"`
	EffectiveNegativeValues     map[string]string `json:"effectiveNegativeValues"`
	EffectiveDamageDistribution map[string]string `json:"effectiveDamageDistribution"`
	DamageBreakdown             map[string]string `json:"damageBreakdown"`
}

func toView(c *gear.Character) resultView {
	v := resultView{ID: c.ID, Value: c.RankValue()}
	if c.Results != nil {
		v.Indicators = c.Results.Indicators
		v.EffectivePositiveValues = c.Results.EffectivePositiveValues
		v.EffectiveNegativeValues = c.Results.EffectiveNegativeValues
		v.EffectiveDamageDistribution = c.Results.EffectiveDamageDistribution
		v.DamageBreakdown = c.Results.DamageBreakdown
	}
	return v
}

const usage = `Usage: gearsearch <gamedata.json> <request.json>

Positional arguments:
  gamedata.json   Path to the static attribute/condition table
  request.json    Path to the build request (slots, affixes, modifiers, rankby)

Flags:
`

func main() {
	jsonOut := flag.Bool("json", false, "Output results as JSON")
	verbose := flag.Bool("verbose", false, "Print detailed search progress to stderr")
	batch := flag.Bool("batch", false, "Run Damage, Survivability, and Healing searches concurrently and print all three")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	settings, minimal, err := loader.LoadSettings(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *batch {
		runBatch(settings, minimal, *jsonOut, *verbose)
		return
	}

	fmt.Fprintf(os.Stderr, "[init] slots=%d rankby=%s maxResults=%d\n",
		len(settings.Slots), settings.RankBy, settings.MaxResults)

	engine, err := gear.NewEngine(settings, minimal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	runSearch(engine, *verbose)
	elapsed := time.Since(start)

	fmt.Fprintf(os.Stderr, "[done] runs=%d results=%d elapsed=%v\n",
		engine.CalculationRuns(), len(engine.List()), elapsed)

	if *jsonOut {
		views := make([]resultView, 0, len(engine.List()))
		for _, c := range engine.List() {
			views = append(views, toView(c))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(views)
		return
	}
	printTable(engine.List())
}

// runBatch fans the three rankby objectives out across a worker pool sized
// to GOMAXPROCS, the way the teacher's Optimizer.Optimize fans seeds out
// across goroutines: a channel of work items, a fixed set of workers
// draining it, a WaitGroup closing the result channel. Each objective gets
// its own Settings value (and so its own heap and condi cache inside its
// Engine) — nothing is shared across workers but the read-only slots/
// modifiers/base attributes every objective searches over.
func runBatch(base *gear.Settings, minimal *gear.MinimalSettings, jsonOut, verbose bool) {
	objectives := []gear.RankBy{gear.RankDamage, gear.RankSurvivability, gear.RankHealing}
	type outcome struct {
		rankBy gear.RankBy
		engine *gear.Engine
		err    error
	}

	work := make(chan gear.RankBy, len(objectives))
	for _, o := range objectives {
		work <- o
	}
	close(work)

	results := make(chan outcome, len(objectives))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(objectives) {
		workers = len(objectives)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rankBy := range work {
				perObjective := *base
				perObjective.RankBy = rankBy
				engine, err := gear.NewEngine(&perObjective, minimal)
				if err != nil {
					results <- outcome{rankBy: rankBy, err: err}
					continue
				}
				runSearch(engine, verbose)
				results <- outcome{rankBy: rankBy, engine: engine}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	byObjective := make(map[gear.RankBy]outcome, len(objectives))
	for r := range results {
		byObjective[r.rankBy] = r
	}

	for _, rankBy := range objectives {
		r := byObjective[rankBy]
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", rankBy, r.err)
			continue
		}
		fmt.Fprintf(os.Stderr, "[done] rankby=%s runs=%d results=%d\n",
			rankBy, r.engine.CalculationRuns(), len(r.engine.List()))
		if jsonOut {
			views := make([]resultView, 0, len(r.engine.List()))
			for _, c := range r.engine.List() {
				views = append(views, toView(c))
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(map[string]any{"rankby": rankBy.String(), "results": views})
			continue
		}
		fmt.Printf("== %s ==\n", rankBy)
		printTable(r.engine.List())
	}
}

// runSearch drives Engine.Step to completion, logging each changed
// snapshot when verbose (spec §4.12's Progress Reporter).
func runSearch(engine *gear.Engine, verbose bool) {
	for {
		progress, result := engine.Step()
		if verbose && progress.IsChanged {
			fmt.Fprintf(os.Stderr, "[search] runs=%d changed=true top=%d\n",
				progress.CalculationRuns, len(progress.NewList))
		}
		if result == gear.StepDone {
			return
		}
	}
}

func printTable(list []*gear.Character) {
	fmt.Printf("%-4s %-24s %12s %12s %12s\n", "Rank", "ID", "Value", "Damage", "Survivability")
	for i, c := range list {
		fmt.Printf("%-4d %-24s %12.2f %12.2f %12.4f\n",
			i+1, c.ID, c.RankValue(), c.DamageScore, c.Survivability)
	}
}
