// Package assessment is the application service around the EVA calculation
// engine: it validates incoming requests, orchestrates the pipeline
// (rescale, classify, concentration-weight, AQ scoring, EV reduction),
// memoizes results, and records operational metrics.
package assessment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	domain "github.com/razinkele/marbefes-eva-app/internal/domain/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Cache is the memoization adapter.  The full pipeline is a pure function of
// its inputs, so a result may be served from cache for an identical request
// key without any semantic difference.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MetricsCollector records operational metrics for assessment runs.
type MetricsCollector interface {
	IncAssessments(dataType string)
	ObserveAssessmentDuration(dataType string, seconds float64)
	IncCacheHit()
	IncCacheMiss()
}

// noopCache is used when no cache backend is configured.
type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New(errors.CodeCacheError, "cache disabled")
}
func (noopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// noopMetrics is used when no collector is provided.
type noopMetrics struct{}

func (noopMetrics) IncAssessments(string)                    {}
func (noopMetrics) ObserveAssessmentDuration(string, float64) {}
func (noopMetrics) IncCacheHit()                             {}
func (noopMetrics) IncCacheMiss()                            {}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds tuneable engine parameters.
type Config struct {
	// RarityThreshold is the inclusive locally-rare occurrence proportion.
	RarityThreshold float64

	// ConcentrationPercentile is the AQ9 percentile.
	ConcentrationPercentile float64

	// MaxFeatures caps the feature count of accepted datasets.
	MaxFeatures int

	// CacheTTL bounds how long memoized results live.
	CacheTTL time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		RarityThreshold:         domain.DefaultRarityThreshold,
		ConcentrationPercentile: domain.DefaultConcentrationPercentile,
		MaxFeatures:             domain.DefaultMaxFeatures,
		CacheTTL:                time.Hour,
	}
}

// Outcome bundles the wire response with the domain artifacts of a run.
// The component store snapshots the domain artifacts on save.
type Outcome struct {
	Response       *eva.AssessmentResponse
	Dataset        *domain.Dataset
	DataType       domain.DataType
	Classification domain.Classification
	Table          *domain.ResultTable
}

// Service exposes the assessment pipeline.
type Service interface {
	// Run executes the full AQ/EV pipeline for one validated dataset.
	Run(ctx context.Context, req *eva.AssessmentRequest) (*Outcome, error)

	// Methodology returns the AQ reference metadata for display/export
	// consumers.
	Methodology() []eva.AQMethodologyEntry
}

type service struct {
	config  Config
	logger  logging.Logger
	cache   Cache
	metrics MetricsCollector
}

// NewService constructs the assessment application service.  A nil logger,
// cache, or metrics collector falls back to a no-op implementation.
func NewService(cfg Config, log logging.Logger, cache Cache, metrics MetricsCollector) Service {
	if cfg.RarityThreshold <= 0 {
		cfg.RarityThreshold = domain.DefaultRarityThreshold
	}
	if cfg.ConcentrationPercentile <= 0 || cfg.ConcentrationPercentile > 100 {
		cfg.ConcentrationPercentile = domain.DefaultConcentrationPercentile
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = domain.DefaultMaxFeatures
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &service{config: cfg, logger: log.Named("assessment"), cache: cache, metrics: metrics}
}

func (s *service) Run(ctx context.Context, req *eva.AssessmentRequest) (*Outcome, error) {
	if req == nil {
		return nil, errors.NewValidation("assessment request is required")
	}
	start := time.Now()

	in, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(req, in.dataType)
	if cached := s.fromCache(ctx, key); cached != nil {
		// The response can be served from cache, but store consumers need
		// the domain artifacts, so the pipeline still runs when they are
		// requested; recomputing rows is cheaper than the cost model of a
		// second cache shape.  Serve the cached envelope as-is.
		s.metrics.IncCacheHit()
		cached.Cached = true
		out := s.compute(in)
		out.Response = cached
		return out, nil
	}
	s.metrics.IncCacheMiss()

	out := s.compute(in)
	out.Response.ComputedAt = time.Now().UTC()

	s.toCache(ctx, key, out.Response)
	s.metrics.IncAssessments(string(in.dataType))
	s.metrics.ObserveAssessmentDuration(string(in.dataType), time.Since(start).Seconds())

	s.logger.Info("assessment run complete",
		logging.String("data_type", string(in.dataType)),
		logging.Int("subzones", in.dataset.NumSubzones()),
		logging.Int("features", in.dataset.NumFeatures()),
		logging.Duration("elapsed", time.Since(start)))

	return out, nil
}

func (s *service) Methodology() []eva.AQMethodologyEntry {
	infos := domain.Methodology()
	out := make([]eva.AQMethodologyEntry, len(infos))
	for i, info := range infos {
		out[i] = eva.AQMethodologyEntry{
			ID:                string(info.ID),
			Name:              info.Name,
			Description:       info.Description,
			DataType:          string(info.DataType),
			NotApplicableWhen: info.NotApplicableWhen,
		}
	}
	return out
}

// preparedInput is a validated, domain-typed assessment request.
type preparedInput struct {
	dataset    *domain.Dataset
	dataType   domain.DataType
	detected   domain.DataType
	userTags   domain.UserTags
	threshold  float64
	percentile float64
}

// prepare validates the request and converts it into domain types.
func (s *service) prepare(req *eva.AssessmentRequest) (*preparedInput, error) {
	ds, err := datasetFromDTO(&req.Dataset)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(s.config.MaxFeatures); err != nil {
		return nil, err
	}

	userTags, err := userTagsFromDTO(req.Classifications)
	if err != nil {
		return nil, err
	}

	detected := domain.DetectDataType(ds)
	dataType := detected
	if req.DataType != "" {
		dataType, err = domain.ParseDataType(req.DataType)
		if err != nil {
			return nil, err
		}
	}
	if dataType == domain.Qualitative {
		if err := ds.ValidateQualitative(); err != nil {
			return nil, err
		}
	}

	threshold := req.RarityThreshold
	if threshold <= 0 {
		threshold = s.config.RarityThreshold
	}
	percentile := req.ConcentrationPercentile
	if percentile <= 0 || percentile > 100 {
		percentile = s.config.ConcentrationPercentile
	}

	return &preparedInput{
		dataset:    ds,
		dataType:   dataType,
		detected:   detected,
		userTags:   userTags,
		threshold:  threshold,
		percentile: percentile,
	}, nil
}

// compute runs the full pipeline over a prepared input.
func (s *service) compute(in *preparedInput) *Outcome {
	cls := domain.ClassifyFeatures(in.dataset, in.userTags, in.threshold)
	tables := domain.PipelineTables{
		Qualitative:   domain.RescaleQualitative(in.dataset),
		Quantitative:  domain.RescaleQuantitative(in.dataset),
		Concentration: domain.ConcentrationWeight(in.dataset, cls, in.percentile),
	}
	table := domain.ComputeAQs(in.dataset, in.dataType, tables, cls, s.logger)
	domain.ReduceEV(table)

	return &Outcome{
		Response:       responseFromDomain(in, cls, table),
		Dataset:        in.dataset,
		DataType:       in.dataType,
		Classification: cls,
		Table:          table,
	}
}

// cacheKey derives the memoization key from the canonical JSON encoding of
// the request plus the resolved data type and engine defaults.  Go's JSON
// encoder sorts map keys, so the encoding is deterministic for equal
// requests.
func (s *service) cacheKey(req *eva.AssessmentRequest, resolved domain.DataType) string {
	payload, err := json.Marshal(struct {
		Req        *eva.AssessmentRequest `json:"req"`
		Resolved   string                 `json:"resolved"`
		Threshold  float64                `json:"threshold"`
		Percentile float64                `json:"percentile"`
	}{req, string(resolved), s.config.RarityThreshold, s.config.ConcentrationPercentile})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return "eva:assess:" + hex.EncodeToString(sum[:])
}

func (s *service) fromCache(ctx context.Context, key string) *eva.AssessmentResponse {
	if key == "" {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var resp eva.AssessmentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.logger.Warn("discarding undecodable cached assessment", logging.Err(err))
		return nil
	}
	return &resp
}

func (s *service) toCache(ctx context.Context, key string, resp *eva.AssessmentResponse) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.config.CacheTTL); err != nil {
		// Cache failures must never fail an assessment.
		s.logger.Warn("failed to memoize assessment result", logging.Err(err))
	}
}
