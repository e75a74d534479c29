package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"skud-compare-api/internal/compare"
	"skud-compare-api/internal/metrics"
	"skud-compare-api/internal/models"
	"skud-compare-api/internal/shift"
	"skud-compare-api/internal/skud"
)

// TabellSource is the seam to the planned-timesheet spreadsheet. The HTTP
// client in internal/tabell implements it; tests substitute canned entries.
type TabellSource interface {
	FetchTabell(ctx context.Context, from, to time.Time) ([]models.TabellEntry, error)
}

// Pipeline runs one comparison end to end: parse the punch workbook, fetch
// the tabell, detect shifts, join. Request-scoped values only; a Pipeline
// is safe to share across concurrent requests.
type Pipeline struct {
	reader   *skud.Reader
	detector *shift.Detector
	tabell   TabellSource
	metrics  *metrics.Metrics
	log      *zap.SugaredLogger
}

func New(reader *skud.Reader, detector *shift.Detector, tabell TabellSource,
	m *metrics.Metrics, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{reader: reader, detector: detector, tabell: tabell, metrics: m, log: log}
}

// Run executes the pipeline over the workbook at path for the inclusive
// date range [from, to].
func (p *Pipeline) Run(ctx context.Context, path string, from, to time.Time) (models.CompareResult, error) {
	started := time.Now()

	punches, err := p.reader.Parse(path, from, to)
	if err != nil {
		return models.CompareResult{}, fmt.Errorf("parse skud workbook: %w", err)
	}
	p.metrics.PunchesParsed.Add(float64(len(punches)))

	entries, err := p.tabell.FetchTabell(ctx, from, to)
	if err != nil {
		p.metrics.FetchFailures.Inc()
		return models.CompareResult{}, fmt.Errorf("fetch tabell: %w", err)
	}

	shiftsByEmployee, broken := p.detector.Detect(punches, from, to)
	for _, shifts := range shiftsByEmployee {
		for _, s := range shifts {
			p.metrics.ShiftsDetected.WithLabelValues(string(s.Type)).Inc()
		}
	}
	p.metrics.ShiftsDetected.WithLabelValues(string(models.ShiftBroken)).Add(float64(len(broken)))

	result := compare.Compare(shiftsByEmployee, broken, entries, p.detector.Windows(), from, to)

	elapsed := time.Since(started)
	p.metrics.CompareDuration.Observe(elapsed.Seconds())
	p.log.Infow("comparison complete",
		"punches", len(punches),
		"entries", len(entries),
		"rows", len(result.Comparison),
		"broken", result.Summary.BrokenCount,
		"elapsed", elapsed)
	return result, nil
}
