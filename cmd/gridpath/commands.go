package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	http_server "github.com/lintang-b-s/gridnav/pkg/http"
	"github.com/lintang-b-s/gridnav/pkg/http/usecases"
	"github.com/lintang-b-s/gridnav/pkg/jps"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configDir string
	mapPath   string
	unpack    bool
	outPath   string
	rateLimit bool
)

func newRootCmd(log *zap.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridpath",
		Short: "Shortest paths on octile grid maps with jump point search",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.ReadConfig(configDir)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.{yaml,json,toml}")
	rootCmd.PersistentFlags().StringVar(&mapPath, "map", "", "octile map file (.map or .map.bz2)")
	rootCmd.PersistentFlags().String("kind", "", "map storage: bitpacked, weighted or rle")
	rootCmd.PersistentFlags().String("policy", "", "search policy: astar, jps or jps_offline")
	_ = viper.BindPFlag(engine.MAP_KIND, rootCmd.PersistentFlags().Lookup("kind"))
	_ = viper.BindPFlag(engine.SEARCH_POLICY, rootCmd.PersistentFlags().Lookup("policy"))
	_ = rootCmd.MarkPersistentFlagRequired("map")

	queryCmd := &cobra.Command{
		Use:   "query <sx> <sy> <gx> <gy>",
		Short: "Find the shortest path between two cells",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, log, args)
		},
	}
	queryCmd.Flags().BoolVar(&unpack, "unpack", false, "print every cell of the path instead of the jump points")

	batchCmd := &cobra.Command{
		Use:   "batch <queries file>",
		Short: "Answer one query per line (sx sy gx gy) concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, log, args[0])
		},
	}

	precomputeCmd := &cobra.Command{
		Use:   "precompute",
		Short: "Precompute the jump table of a uniform cost map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrecompute(cmd, log)
		},
	}
	precomputeCmd.Flags().StringVar(&outPath, "out", "", "jump table output file (default <map>.jt.bz2)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve path queries over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(log)
		},
	}
	serveCmd.Flags().BoolVar(&rateLimit, "ratelimit", false, "limit requests with a shared token bucket")
	serveCmd.Flags().Int("port", 6060, "api port")
	_ = viper.BindPFlag("API_PORT", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(queryCmd, batchCmd, precomputeCmd, serveCmd)
	return rootCmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func loadEngine(ctx context.Context, log *zap.Logger) (*engine.Engine, error) {
	cfg, err := engine.LoadConfig()
	if err != nil {
		return nil, err
	}
	return engine.NewEngineFromFile(ctx, mapPath, cfg, log)
}

func parseInts(args []string) ([]int, error) {
	vals := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid coordinate %q", a)
		}
		vals[i] = v
	}
	return vals, nil
}

func formatPath(path []da.Coordinate) string {
	parts := make([]string, len(path))
	for i, c := range path {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func runQuery(cmd *cobra.Command, log *zap.Logger, args []string) error {
	v, err := parseInts(args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEngine(ctx, log)
	if err != nil {
		return err
	}

	sol, err := e.FindPath(ctx, da.NewCoordinate(v[0], v[1]), da.NewCoordinate(v[2], v[3]))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !sol.Found {
		fmt.Fprintln(out, "no path")
		return nil
	}
	path := sol.Path
	if unpack {
		path = search.UnpackPath(path)
	}
	fmt.Fprintf(out, "cost %.6f\n", sol.Cost)
	fmt.Fprintf(out, "path %s\n", formatPath(path))
	log.Info("query done",
		zap.Int("expanded", sol.Stats.Expanded), zap.Int("generated", sol.Stats.Generated),
		zap.Int("touched", sol.Stats.Touched), zap.Duration("elapsed", sol.Stats.Elapsed))
	return nil
}

func readQueries(filename string) ([]engine.Query, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	queries := make([]engine.Query, 0)
	for lineNo := 1; ; lineNo++ {
		line, err := util.ReadLine(br)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		ff := util.Fields(line)
		if len(ff) == 0 || strings.HasPrefix(ff[0], "#") {
			continue
		}
		if len(ff) != 4 {
			return nil, util.WrapErrorf(nil, util.ErrFormat, "line %d: expected sx sy gx gy", lineNo)
		}
		v, err := parseInts(ff)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrFormat, "line %d", lineNo)
		}
		queries = append(queries, engine.NewQuery(v[0], v[1], v[2], v[3]))
	}
	return queries, nil
}

func runBatch(cmd *cobra.Command, log *zap.Logger, queriesPath string) error {
	queries, err := readQueries(queriesPath)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEngine(ctx, log)
	if err != nil {
		return err
	}

	start := time.Now()
	results := e.FindPaths(ctx, queries)
	out := cmd.OutOrStdout()
	for _, res := range results {
		q := res.Query
		switch {
		case res.Err != nil:
			fmt.Fprintf(out, "%v %v error %v\n", q.Start, q.Goal, res.Err)
		case !res.Solution.Found:
			fmt.Fprintf(out, "%v %v no path\n", q.Start, q.Goal)
		default:
			fmt.Fprintf(out, "%v %v %.6f\n", q.Start, q.Goal, res.Solution.Cost)
		}
	}
	log.Info("batch done", zap.Int("queries", len(queries)), zap.Duration("took", time.Since(start)))
	return nil
}

func runPrecompute(cmd *cobra.Command, log *zap.Logger) error {
	cfg, err := engine.LoadConfig()
	if err != nil {
		return err
	}
	kind, err := cfg.GetMapKind()
	if err != nil {
		return err
	}
	grid, err := gridmap.ReadMap(mapPath, kind)
	if err != nil {
		return err
	}
	if !grid.IsUniformCost() {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "jump tables need a uniform cost map")
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	table, err := jps.Precompute(ctx, grid)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(strings.TrimSuffix(mapPath, ".bz2"), ".map") + ".jt.bz2"
	}
	if err := table.WriteJumpTable(outPath); err != nil {
		return err
	}
	log.Info("jump table written", zap.String("path", outPath), zap.Duration("took", time.Since(start)))
	fmt.Fprintln(cmd.OutOrStdout(), outPath)
	return nil
}

func runServe(log *zap.Logger) error {
	ctx, cancel := signalContext()
	defer cancel()

	e, err := loadEngine(ctx, log)
	if err != nil {
		return err
	}

	pathService := usecases.NewPathService(log, e)
	err = http_server.NewServer(log).Use(ctx, rateLimit, pathService)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
