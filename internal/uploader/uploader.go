// Package uploader replaces the Code Insights report of a commit with one
// built from ESLint results.
package uploader

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/lintinsights/internal/bitbucket"
	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/ppiankov/lintinsights/internal/insights"
	"github.com/ppiankov/lintinsights/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	// MaxAnnotationsPerRequest is the API limit for one annotations request.
	MaxAnnotationsPerRequest = 100
	// MaxTotalAnnotations is the API limit per report; extras are dropped.
	MaxTotalAnnotations = 1000
)

// ReportsAPI is the subset of the Bitbucket client the uploader needs.
type ReportsAPI interface {
	DeleteReport(ctx context.Context, reportID string) error
	CreateReport(ctx context.Context, reportID string, report insights.ReportSummary) error
	CreateAnnotations(ctx context.Context, reportID string, annotations []insights.Annotation) error
}

// Uploader runs delete, create and annotate against one commit.
type Uploader struct {
	api      ReportsAPI
	reportID string
	builder  *insights.Builder
	log      logrus.FieldLogger
}

// New creates an Uploader for the report of commit. A nil log discards output.
func New(api ReportsAPI, commit, workDir string, log logrus.FieldLogger) *Uploader {
	if log == nil {
		log = logging.Discard()
	}
	return &Uploader{
		api:      api,
		reportID: insights.ReportID(commit),
		builder:  &insights.Builder{WorkDir: workDir, Log: log},
		log:      log,
	}
}

// ReportID returns the id of the report this uploader manages.
func (u *Uploader) ReportID() string {
	return u.reportID
}

// Process replaces the commit's report. Stages run in order and the first
// failure aborts the rest; a missing previous report is a failure too.
func (u *Uploader) Process(ctx context.Context, results []eslint.LintResult) error {
	report := insights.GenerateReport(results)
	annotations := u.builder.Annotations(results, u.reportID)

	log := u.log.WithField("report_id", u.reportID)

	if err := u.stage(log, "delete", "Deleting previous report...", "Previous report deleted!", "Report deletion failed!",
		func() error { return u.api.DeleteReport(ctx, u.reportID) }); err != nil {
		return err
	}

	if err := u.stage(log, "create", "Creating a new report...", "New report created", "Report creation failed",
		func() error { return u.api.CreateReport(ctx, u.reportID, report) }); err != nil {
		return err
	}

	if len(annotations) == 0 {
		log.WithField("stage", "annotate").Warn("no annotations found!")
		return nil
	}

	return u.stage(log, "annotate", "Adding new annotations...", "Annotations added!", "Annotations adding failed!",
		func() error { return u.uploadAnnotations(ctx, annotations) })
}

func (u *Uploader) stage(log logrus.FieldLogger, name, start, done, failed string, fn func() error) error {
	log = log.WithField("stage", name)
	log.Info(start)

	if err := fn(); err != nil {
		entry := log.WithError(err)
		var apiErr *bitbucket.APIError
		if errors.As(err, &apiErr) && apiErr.Body != "" {
			entry = entry.WithField("response", apiErr.Body)
		}
		entry.Error(failed)
		return fmt.Errorf("%s stage: %w", name, err)
	}

	log.Info(done)
	return nil
}

// uploadAnnotations sends the first MaxTotalAnnotations in batches.
func (u *Uploader) uploadAnnotations(ctx context.Context, annotations []insights.Annotation) error {
	if len(annotations) > MaxTotalAnnotations {
		u.log.WithField("dropped", len(annotations)-MaxTotalAnnotations).
			Debug("annotation limit reached")
		annotations = annotations[:MaxTotalAnnotations]
	}

	for i, batch := range Chunk(annotations, MaxAnnotationsPerRequest) {
		u.log.WithFields(logrus.Fields{"batch": i + 1, "size": len(batch)}).Debug("uploading annotations")
		if err := u.api.CreateAnnotations(ctx, u.reportID, batch); err != nil {
			return err
		}
	}
	return nil
}

// Chunk splits annotations into consecutive slices of at most size.
func Chunk(annotations []insights.Annotation, size int) [][]insights.Annotation {
	if size <= 0 {
		size = MaxAnnotationsPerRequest
	}
	var batches [][]insights.Annotation
	for start := 0; start < len(annotations); start += size {
		end := start + size
		if end > len(annotations) {
			end = len(annotations)
		}
		batches = append(batches, annotations[start:end])
	}
	return batches
}
