package auditlog

import (
	"context"

	"github.com/jvasek/tipliga/internal/domain/audit"
)

// NopRecorder discards audit entries. Used when the webhook collector is
// not configured so services never need a nil check.
type NopRecorder struct{}

func NewNopRecorder() NopRecorder {
	return NopRecorder{}
}

func (NopRecorder) Record(context.Context, audit.Entry) error {
	return nil
}
