// Package formatter is the entry point ESLint results flow through: it
// starts the Code Insights upload in the background and returns the
// stylish text immediately.
package formatter

import (
	"context"

	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/ppiankov/lintinsights/internal/logging"
	"github.com/ppiankov/lintinsights/internal/reporter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Processor uploads results. *uploader.Uploader implements it.
type Processor interface {
	Process(ctx context.Context, results []eslint.LintResult) error
}

// Formatter pairs the stylish reporter with an optional background upload.
type Formatter struct {
	processor Processor
	stylish   *reporter.StylishReporter
	log       logrus.FieldLogger
}

// New creates a Formatter. A nil processor formats without uploading.
func New(processor Processor, color bool, log logrus.FieldLogger) *Formatter {
	if log == nil {
		log = logging.Discard()
	}
	return &Formatter{
		processor: processor,
		stylish:   reporter.NewStylishReporter(nil, color),
		log:       log,
	}
}

// Upload is a handle on a background upload.
type Upload struct {
	group *errgroup.Group
}

// Wait blocks until the upload settles and returns its error, which has
// already been logged.
func (u *Upload) Wait() error {
	if u == nil || u.group == nil {
		return nil
	}
	return u.group.Wait()
}

// Format starts the upload without waiting for it and returns the stylish
// text. The text never depends on the upload's outcome or timing.
func (f *Formatter) Format(ctx context.Context, results []eslint.LintResult) (string, *Upload) {
	upload := &Upload{}

	if f.processor != nil {
		upload.group = &errgroup.Group{}
		upload.group.Go(func() error {
			err := f.processor.Process(ctx, results)
			if err != nil {
				f.log.WithError(err).Error("Code Insights upload failed")
			}
			return err
		})
	}

	return f.stylish.Format(results), upload
}
