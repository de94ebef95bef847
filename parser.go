package uriparser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nlstn/go-odata-uriparser/edm"
	"github.com/nlstn/go-odata-uriparser/internal/binder"
	"github.com/nlstn/go-odata-uriparser/internal/observability"
	"github.com/nlstn/go-odata-uriparser/internal/syntax"
	"github.com/nlstn/go-odata-uriparser/semantic"
)

// Parser turns $filter and $orderby text into semantic trees bound against
// a model. A Parser is safe for concurrent use; the trees it returns are
// immutable and may be shared between callers.
type Parser struct {
	model    *edm.Model
	binder   *binder.Binder
	logger   *slog.Logger
	maxDepth int
	cache    *clauseCache
	obs      *observability.Config
}

// NewParser creates a parser for model.
func NewParser(model *edm.Model, opts ...Option) *Parser {
	cfg := config{
		logger:    slog.Default(),
		maxDepth:  syntax.DefaultMaxDepth,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth < 1 {
		cfg.maxDepth = syntax.DefaultMaxDepth
	}

	return &Parser{
		model:    model,
		binder:   binder.New(model, cfg.logger),
		logger:   cfg.logger,
		maxDepth: cfg.maxDepth,
		cache:    newClauseCache(cfg.cacheSize, cfg.logger),
		obs:      observability.NewConfig(cfg.obsOpts...),
	}
}

// Model returns the model the parser binds against.
func (p *Parser) Model() *edm.Model { return p.model }

// ParseFilter parses and binds a $filter expression applied to entitySet.
func (p *Parser) ParseFilter(ctx context.Context, entitySet, text string) (*semantic.FilterClause, error) {
	v, err := p.parse(ctx, entitySet, observability.OptionFilter, text, func(set *edm.EntitySet) (interface{}, error) {
		ast, err := syntax.ParseFilter(text, p.maxDepth)
		if err != nil {
			return nil, err
		}
		return p.binder.BindFilter(set, ast)
	})
	if err != nil {
		return nil, err
	}
	return v.(*semantic.FilterClause), nil
}

// ParseOrderBy parses and binds an $orderby expression applied to entitySet.
func (p *Parser) ParseOrderBy(ctx context.Context, entitySet, text string) (*semantic.OrderByClause, error) {
	v, err := p.parse(ctx, entitySet, observability.OptionOrderBy, text, func(set *edm.EntitySet) (interface{}, error) {
		items, err := syntax.ParseOrderBy(text, p.maxDepth)
		if err != nil {
			return nil, err
		}
		return p.binder.BindOrderBy(set, items)
	})
	if err != nil {
		return nil, err
	}
	return v.(*semantic.OrderByClause), nil
}

// Query holds the bound query options of one request. Options absent from
// the request are nil.
type Query struct {
	EntitySet *edm.EntitySet
	Filter    *semantic.FilterClause
	OrderBy   *semantic.OrderByClause
}

// ParseQuery parses the $filter and $orderby options found in values.
// Options may be given with or without the '$' prefix; other options are
// ignored.
func (p *Parser) ParseQuery(ctx context.Context, entitySet string, values url.Values) (*Query, error) {
	set := p.model.FindEntitySet(entitySet)
	if set == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntitySetNotFound, entitySet)
	}
	q := &Query{EntitySet: set}

	filter, ok, err := queryOption(values, "filter")
	if err != nil {
		return nil, err
	}
	if ok {
		if q.Filter, err = p.ParseFilter(ctx, entitySet, filter); err != nil {
			return nil, err
		}
	}

	orderBy, ok, err := queryOption(values, "orderby")
	if err != nil {
		return nil, err
	}
	if ok {
		if q.OrderBy, err = p.ParseOrderBy(ctx, entitySet, orderBy); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// queryOption returns the single value of a system query option.
func queryOption(values url.Values, name string) (string, bool, error) {
	var found []string
	for key, vals := range values {
		if strings.EqualFold(strings.TrimPrefix(key, "$"), name) {
			found = append(found, vals...)
		}
	}
	switch len(found) {
	case 0:
		return "", false, nil
	case 1:
		return found[0], true, nil
	}
	return "", false, fmt.Errorf("%w: $%s specified more than once", ErrInvalidQuery, name)
}

func (p *Parser) parse(ctx context.Context, entitySet, option, text string, build func(*edm.EntitySet) (interface{}, error)) (result interface{}, err error) {
	start := time.Now()
	ctx, span := p.obs.Tracer().StartParse(ctx, entitySet, option)
	defer span.End()
	if p.obs.QueryTextTracingEnabled() {
		span.SetAttributes(observability.QueryTextAttr(text))
	}
	timing := observability.StartServerTimingWithDesc(ctx, "parse", "Parse "+option)
	defer timing.Stop()

	logger := observability.LoggerWithTrace(ctx, p.logger)
	defer func() {
		if err != nil {
			p.obs.Tracer().RecordError(span, err)
			p.obs.Metrics().RecordError(ctx, entitySet, option, errorType(err))
			logger.Debug("Rejected query option",
				slog.String(observability.LogFieldEntitySet, entitySet),
				slog.String(observability.LogFieldOption, option),
				slog.String(observability.LogFieldError, err.Error()))
		}
	}()

	set := p.model.FindEntitySet(entitySet)
	if set == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntitySetNotFound, entitySet)
	}

	key := cacheKey(entitySet, option, text)
	if cached, ok := p.cache.get(key); ok {
		span.SetAttributes(observability.CacheHitAttr(true))
		p.obs.Metrics().RecordParse(ctx, entitySet, option, time.Since(start), true)
		return cached, nil
	}
	span.SetAttributes(observability.CacheHitAttr(false))

	result, err = build(set)
	if err != nil {
		return nil, classify(err)
	}
	p.cache.put(key, result)

	duration := time.Since(start)
	p.obs.Metrics().RecordParse(ctx, entitySet, option, duration, false)
	logger.Debug("Parsed query option",
		slog.String(observability.LogFieldEntitySet, entitySet),
		slog.String(observability.LogFieldOption, option),
		slog.Float64(observability.LogFieldDuration, float64(duration.Microseconds())/1000))
	return result, nil
}
