// Package service contains the application services: authentication, the
// space hierarchy, items and inventory propagation.
//
// Every error returned by a service is an *errs.Error. Storage failures are
// logged here and wrapped into DATABASE_ERROR; domain errors from lower
// layers pass through unchanged.
package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/errs"
)

// Recorder receives service-level events for metrics.
type Recorder interface {
	AuthEvent(op, outcome string)
	Propagated(n int)
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}
func (nopRecorder) Propagated(int)           {}

// storeErr converts a repository or store failure into a domain error.
func storeErr(log *zap.Logger, op string, err error) error {
	var de *errs.Error
	if errors.As(err, &de) {
		return de
	}
	log.Error(op, zap.Error(err))
	return errs.Database(op+" failed", err)
}

// outcome labels an operation result for Recorder.AuthEvent.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(errs.From(err).Code)
}

// lookupErr is storeErr with repository not-found mapped to NOT_FOUND for
// the given resource.
func lookupErr(log *zap.Logger, op, resource string, id any, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound(resource, id)
	}
	return storeErr(log, op, err)
}
