// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// Samples are buffered in memory, flushed on a ticker while a load runs, and
// flushed one final time on Close. Ingestion runs are short-lived most of the
// time, so the final flush carries most of the data; the ticker only matters
// for large multi-file loads.
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"dochicar/internal/metrics"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to "ingest".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls the periodic flush. Defaults to 60s.
	FlushEvery time.Duration

	// Unexported test seams: deterministic clock/ticker and a fake
	// submitter so unit tests never hit the network.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal slice of the Datadog SDK the backend needs.
// The SDK exposes a concrete *datadogV2.MetricsApi; depending on this
// interface instead keeps the flush path testable.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api        metricsSubmitter
	ctx        context.Context
	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags  []string
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu       sync.Mutex
	counters map[seriesKey]float64
	samples  map[seriesKey][]float64
}

// seriesKey identifies one buffered series: metric name plus rendered tags.
type seriesKey struct {
	name string
	tags string
}

// NewBackend constructs a Datadog backend using the official client. Network
// errors surface from Flush, not from construction.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "ingest"
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}
	submitter := opts.submitter
	if submitter == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		counters:   map[seriesKey]float64{},
		samples:    map[seriesKey][]float64{},
	}

	go b.loop()
	return b, nil
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

func (b *Backend) loop() {
	defer close(b.doneCh)
	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the flush loop and performs one final Flush. Call once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	k := b.key(name, labels)
	b.mu.Lock()
	b.counters[k] += delta
	b.mu.Unlock()
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}
	k := b.key(name, labels)
	b.mu.Lock()
	b.samples[k] = append(b.samples[k], value)
	b.mu.Unlock()
}

// key renders a stable series key: dotted metric name plus sorted label tags.
func (b *Backend) key(name string, labels metrics.Labels) seriesKey {
	tags := make([]string, 0, len(labels))
	for k, v := range labels {
		if v == "" {
			v = "unknown"
		}
		tags = append(tags, k+":"+v)
	}
	sort.Strings(tags)
	return seriesKey{
		name: strings.ReplaceAll(name, "_", "."),
		tags: strings.Join(tags, ","),
	}
}

// Flush submits buffered metrics and resets the buffers. Buffers reset even
// when submission fails; delivery here is best-effort by design.
func (b *Backend) Flush() error {
	b.mu.Lock()
	counters := b.counters
	samples := b.samples
	b.counters = map[seriesKey]float64{}
	b.samples = map[seriesKey][]float64{}
	b.mu.Unlock()

	if len(counters) == 0 && len(samples) == 0 {
		return nil
	}

	nowUnix := b.now().Unix()
	series := make([]datadogV2.MetricSeries, 0, len(counters)+4*len(samples))

	for k, v := range counters {
		series = append(series, b.series(k, "", v, datadogV2.METRICINTAKETYPE_COUNT, nowUnix))
	}
	for k, vals := range samples {
		cp := append([]float64(nil), vals...)
		sort.Float64s(cp)
		series = append(series,
			b.series(k, ".p50", percentile(cp, 0.50), datadogV2.METRICINTAKETYPE_GAUGE, nowUnix),
			b.series(k, ".p95", percentile(cp, 0.95), datadogV2.METRICINTAKETYPE_GAUGE, nowUnix),
			b.series(k, ".max", cp[len(cp)-1], datadogV2.METRICINTAKETYPE_GAUGE, nowUnix),
			b.series(k, ".samples", float64(len(cp)), datadogV2.METRICINTAKETYPE_GAUGE, nowUnix),
		)
	}

	payload := datadogV2.MetricPayload{Series: series}
	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

func (b *Backend) series(k seriesKey, suffix string, value float64, typ datadogV2.MetricIntakeType, nowUnix int64) datadogV2.MetricSeries {
	tags := append([]string(nil), b.baseTags...)
	if k.tags != "" {
		tags = append(tags, strings.Split(k.tags, ",")...)
	}
	return datadogV2.MetricSeries{
		Metric: k.name + suffix,
		Type:   typ.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

// percentile uses nearest-rank on an already sorted, non-empty sample set.
func percentile(sorted []float64, p float64) float64 {
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
