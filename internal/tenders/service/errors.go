package service

import (
	"errors"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCriteria    = domain.ErrInvalidCriteria
)

// Recorder receives authentication outcomes. Implemented by the metrics
// package; a nil Recorder is allowed.
type Recorder interface {
	RecordLogin(success bool)
	RecordRefresh(success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordLogin(bool)   {}
func (nopRecorder) RecordRefresh(bool) {}

func recorderOr(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
