package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xaitan80/matchbrowser/internal/auth"
	"github.com/xaitan80/matchbrowser/internal/config"
	dbpkg "github.com/xaitan80/matchbrowser/internal/db"
	"github.com/xaitan80/matchbrowser/internal/matches"
	"github.com/xaitan80/matchbrowser/internal/watch"
)

//go:embed web/*
var webFS embed.FS

var (
	// flag overrides for the env config
	sourceFlag  string
	addrFlag    string
	columnsFlag string

	filterFlags struct {
		from, to, competition, phase, team, q string
	}
)

var rootCmd = &cobra.Command{
	Use:   "matchbrowser",
	Short: "Browse and filter a CSV of sports matches",
	Long: `matchbrowser loads a semicolon-delimited (or XLSX) table of matches and
lets you filter it by date range, competition, phase, team and free text,
from the command line or through a small web page.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the filter page and JSON API",
	RunE:  runServe,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the matches that pass the given filters",
	RunE:  runList,
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the competitions, phases and teams in the dataset",
	RunE:  runOptions,
}

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token [token]",
	Short: "Print the bcrypt hash to use as ADMIN_TOKEN_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := auth.HashToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&sourceFlag, "source", "", "path or http(s) URL of the match table (overrides SOURCE)")
	pf.StringVar(&columnsFlag, "columns", "", "YAML column map (overrides COLUMNS_FILE)")

	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides ADDR)")

	lf := listCmd.Flags()
	lf.StringVar(&filterFlags.from, "from", "", "earliest date, YYYY-MM-DD or DD/MM/YYYY")
	lf.StringVar(&filterFlags.to, "to", "", "latest date, inclusive")
	lf.StringVar(&filterFlags.competition, "competition", "", "exact competition")
	lf.StringVar(&filterFlags.phase, "phase", "", "exact phase")
	lf.StringVar(&filterFlags.team, "team", "", "exact home or away team")
	lf.StringVarP(&filterFlags.q, "query", "q", "", "free-text search")

	rootCmd.AddCommand(serveCmd, listCmd, optionsCmd, hashTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies command-line overrides on top of the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if sourceFlag != "" {
		cfg.Source = sourceFlag
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}
	if columnsFlag != "" {
		cfg.ColumnsFile = columnsFlag
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// newDataset builds the dataset from config; history may be nil.
func newDataset(cfg *config.Config, log *zap.Logger, history matches.LoadRecorder) (*matches.Dataset, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	return matches.NewDataset(matches.DatasetConfig{
		Source:   cfg.Source,
		Layout:   layout,
		Location: cfg.Location,
		Fetcher:  matches.NewFetcher(&http.Client{Timeout: 30 * time.Second}),
		Logger:   log,
		History:  history,
	}), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Interfaces stay nil when history is off so routes see a nil History.
	var (
		recorder matches.LoadRecorder
		lister   matches.History
	)
	if cfg.DBPath != "" {
		gdb, err := dbpkg.OpenContext(cmd.Context(), cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = dbpkg.Close(gdb) }()
		repo := matches.NewHistoryRepo(gdb)
		recorder, lister = repo, repo
	}

	ds, err := newDataset(cfg, log, recorder)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A failed first load still serves: the page shows the error and reload retries.
	_ = ds.Load(ctx)

	if cfg.Watch {
		if matches.IsRemote(cfg.Source) {
			log.Warn("WATCH ignored for remote source", zap.String("source", cfg.Source))
		} else {
			w, err := watch.New(cfg.Source, ds.Load, log)
			if err != nil {
				return fmt.Errorf("watch source: %w", err)
			}
			go w.Run(ctx)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	matches.RegisterRoutes(r, ds, lister, auth.RequireToken(cfg.AdminTokenHash))

	r.GET("/", func(c *gin.Context) {
		f, err := webFS.ReadFile("web/index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "missing index")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", f)
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("listening", zap.String("addr", cfg.Addr), zap.String("source", cfg.Source))

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// loadOnce is used by the one-shot commands; they log warnings only.
func loadOnce(cmd *cobra.Command) (*matches.Dataset, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger("warn")
	if err != nil {
		return nil, err
	}
	ds, err := newDataset(cfg, log, nil)
	if err != nil {
		return nil, err
	}
	if err := ds.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return ds, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	ds, err := loadOnce(cmd)
	if err != nil {
		return err
	}
	loc := ds.Location()
	from, err := matches.ParseCriteriaDate(filterFlags.from, loc)
	if err != nil {
		return err
	}
	to, err := matches.ParseCriteriaDate(filterFlags.to, loc)
	if err != nil {
		return err
	}
	list := matches.Filter(ds.Records(), matches.Criteria{
		From:        from,
		To:          to,
		Competition: filterFlags.competition,
		Phase:       filterFlags.phase,
		Team:        filterFlags.team,
		Query:       filterFlags.q,
	})

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, c := range matches.Project(list) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.DateLabel, c.Title, c.Competition, c.Phase, c.VideoURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d match(s)\n", len(list))
	return nil
}

func runOptions(cmd *cobra.Command, _ []string) error {
	ds, err := loadOnce(cmd)
	if err != nil {
		return err
	}
	opts := matches.CurrentOptions(ds.Records())
	out := cmd.OutOrStdout()
	for _, sec := range []struct {
		name   string
		values []string
	}{
		{"Competitions", opts.Competitions},
		{"Phases", opts.Phases},
		{"Teams", opts.Teams},
	} {
		fmt.Fprintf(out, "%s (%d)\n", sec.name, len(sec.values))
		for _, v := range sec.values {
			fmt.Fprintf(out, "  %s\n", v)
		}
	}
	return nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}
