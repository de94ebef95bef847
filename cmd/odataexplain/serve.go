package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	uriparser "github.com/nlstn/go-odata-uriparser"
	"github.com/nlstn/go-odata-uriparser/gormfilter"
	"github.com/nlstn/go-odata-uriparser/internal/observability"
	"github.com/nlstn/go-odata-uriparser/printer"
)

func newServeCommand(rootOpts *rootOptions) *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /explain/{set} over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			level, _ := cfg.level()
			logger := newLogger(cmd.ErrOrStderr(), level, rootOpts.Verbose)

			srv, err := newExplainServer(cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("Serving explain endpoint",
				slog.String("addr", cfg.Addr),
				slog.String("dialect", cfg.Database.Dialect))
			return http.ListenAndServe(cfg.Addr, srv.Handler())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config file")
	return cmd
}

// explainServer answers GET /explain/{set} with the bound form of the
// request's $filter and $orderby.
type explainServer struct {
	catalog    *catalog
	parser     *uriparser.Parser
	translator *gormfilter.Translator
	db         *gorm.DB
	obs        *observability.Config
	logger     *slog.Logger
}

func newExplainServer(cfg Config, logger *slog.Logger) (*explainServer, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.seedEnabled() {
		if err := seed(db); err != nil {
			return nil, err
		}
	}

	obsOpts := []observability.Option{observability.WithServiceName("odataexplain")}
	parserOpts := []uriparser.Option{uriparser.WithLogger(logger), uriparser.WithMaxDepth(cfg.MaxDepth)}
	translatorOpts := []gormfilter.Option{gormfilter.WithLogger(logger)}
	if cfg.Tracing.Enabled {
		tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
		obsOpts = append(obsOpts, observability.WithTracerProvider(tp), observability.WithMeterProvider(mp))
		parserOpts = append(parserOpts, uriparser.WithTracerProvider(tp), uriparser.WithMeterProvider(mp))
		translatorOpts = append(translatorOpts, gormfilter.WithTracerProvider(tp), gormfilter.WithMeterProvider(mp))
		if cfg.Tracing.DetailedDB {
			obsOpts = append(obsOpts, observability.WithDetailedDBTracing())
		}
		if cfg.Tracing.QueryText {
			obsOpts = append(obsOpts, observability.WithQueryTextTracing())
			parserOpts = append(parserOpts, uriparser.WithQueryTextTracing())
		}
	}
	if cfg.ServerTiming {
		obsOpts = append(obsOpts, observability.WithServerTiming())
		if err := observability.RegisterServerTimingCallbacks(db); err != nil {
			return nil, fmt.Errorf("failed to register server timing callbacks: %w", err)
		}
	}
	obs := observability.NewConfig(obsOpts...)
	if err := observability.RegisterGORMCallbacks(db, obs); err != nil {
		return nil, fmt.Errorf("failed to register gorm callbacks: %w", err)
	}

	if cfg.CacheSize != nil {
		parserOpts = append(parserOpts, uriparser.WithCacheSize(*cfg.CacheSize))
	}

	return &explainServer{
		catalog:    cat,
		parser:     uriparser.NewParser(cat.model, parserOpts...),
		translator: gormfilter.New(translatorOpts...),
		db:         db,
		obs:        obs,
		logger:     logger,
	}, nil
}

// Handler returns the server's routes wrapped in the observability middleware.
func (s *explainServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /explain", s.handleSets)
	mux.HandleFunc("GET /explain/{set}", s.handleExplain)
	return observability.HTTPMiddleware(s.obs)(mux)
}

type explainResponse struct {
	EntitySet   string        `json:"entitySet"`
	Filter      string        `json:"filter,omitempty"`
	FilterTree  string        `json:"filterTree,omitempty"`
	OrderBy     string        `json:"orderby,omitempty"`
	OrderByTree []string      `json:"orderbyTree,omitempty"`
	SQL         string        `json:"sql"`
	Vars        []interface{} `json:"vars,omitempty"`
	Count       int64         `json:"count"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *explainServer) handleSets(w http.ResponseWriter, r *http.Request) {
	sets := s.catalog.model.EntitySets()
	names := make([]string, 0, len(sets))
	for _, set := range sets {
		names = append(names, set.Name)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"entitySets": names})
}

func (s *explainServer) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := observability.WithDBTimeAccumulator(r.Context())

	q, err := s.parser.ParseQuery(ctx, r.PathValue("set"), r.URL.Query())
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	resp := explainResponse{EntitySet: q.EntitySet.Name}

	if q.Filter != nil {
		if resp.Filter, err = printer.PrintFilter(q.Filter); err != nil {
			s.writeError(ctx, w, err)
			return
		}
		if resp.FilterTree, err = printer.Tree(q.Filter.Expression(), printer.WithTypes()); err != nil {
			s.writeError(ctx, w, err)
			return
		}
	}
	if q.OrderBy != nil {
		if resp.OrderBy, err = printer.PrintOrderBy(q.OrderBy); err != nil {
			s.writeError(ctx, w, err)
			return
		}
		for _, item := range q.OrderBy.Items() {
			tree, err := printer.Tree(item.Expression, printer.WithTypes())
			if err != nil {
				s.writeError(ctx, w, err)
				return
			}
			resp.OrderByTree = append(resp.OrderByTree, tree)
		}
	}

	if err := s.explainSQL(ctx, q, &resp); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	observability.RecordDBTime(ctx)
	writeJSON(w, http.StatusOK, resp)
}

// explainSQL renders the query as a dry-run statement and counts the rows
// it matches.
func (s *explainServer) explainSQL(ctx context.Context, q *uriparser.Query, resp *explainResponse) error {
	dest, ok := s.catalog.destination(q.EntitySet.Name)
	if !ok {
		return fmt.Errorf("%w: %s has no backing table", uriparser.ErrEntitySetNotFound, q.EntitySet.Name)
	}

	tx := s.db.WithContext(ctx).Model(dest)
	tx, err := s.translator.Apply(tx, q.Filter)
	if err != nil {
		return err
	}
	if tx, err = s.translator.ApplyOrderBy(tx, q.OrderBy); err != nil {
		return err
	}

	stmt := tx.Session(&gorm.Session{DryRun: true}).Find(dest)
	if stmt.Error != nil {
		return stmt.Error
	}
	resp.SQL = stmt.Statement.SQL.String()
	resp.Vars = stmt.Statement.Vars

	return tx.Session(&gorm.Session{}).Count(&resp.Count).Error
}

func (s *explainServer) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	logger := observability.LoggerWithTrace(ctx, s.logger)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		logger.Error("Explain failed", slog.String(observability.LogFieldError, err.Error()))
	} else {
		logger.Debug("Explain rejected", slog.Int("status", status), slog.String(observability.LogFieldError, err.Error()))
	}
	observability.RecordDBTime(ctx)
	writeJSON(w, status, errorResponse{Error: errorBody{Code: strconv.Itoa(status), Message: err.Error()}})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, uriparser.ErrEntitySetNotFound):
		return http.StatusNotFound
	case errors.Is(err, uriparser.ErrInvalidSyntax), errors.Is(err, uriparser.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, uriparser.ErrNotImplemented), errors.Is(err, gormfilter.ErrUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write response:", err)
	}
}
