package storage

import (
	"context"
	"fmt"

	"dietvision/logger"

	"go.uber.org/zap"
)

// Result is what callers see from a write. Message is ready for display.
type Result struct {
	OK      bool    `json:"ok"`
	Outcome Outcome `json:"-"`
	Tier    Tier    `json:"-"`
	Message string  `json:"message"`
}

// Fallback tries the primary tier and demotes to the secondary on any error.
// A nil primary means no remote store is configured and is not an error.
type Fallback struct {
	primary   Table
	secondary Table
}

func NewFallback(primary, secondary Table) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Upsert(ctx context.Context, spec TableSpec, key string, row Row) Result {
	if key == "" {
		return Result{OK: false, Message: ErrEmptyKey.Error()}
	}
	if f.primary != nil {
		out, err := f.primary.Upsert(ctx, spec, key, row)
		if err == nil {
			return success(out, f.primary.Tier())
		}
		logger.Warn("remote upsert failed, falling back to local file",
			zap.String("table", spec.Sheet), zap.Error(err))
	}
	out, err := f.secondary.Upsert(ctx, spec, key, row)
	if err != nil {
		logger.Error("local upsert failed", zap.String("file", spec.File), zap.Error(err))
		return failure(spec, err)
	}
	return success(out, f.secondary.Tier())
}

// Append adds a row without a key scan, for log-style tables.
func (f *Fallback) Append(ctx context.Context, spec TableSpec, row Row) Result {
	if f.primary != nil {
		err := f.primary.Append(ctx, spec, row)
		if err == nil {
			return success(Created, f.primary.Tier())
		}
		logger.Warn("remote append failed, falling back to local file",
			zap.String("table", spec.Sheet), zap.Error(err))
	}
	if err := f.secondary.Append(ctx, spec, row); err != nil {
		logger.Error("local append failed", zap.String("file", spec.File), zap.Error(err))
		return failure(spec, err)
	}
	return success(Created, f.secondary.Tier())
}

// Lookup checks the primary first and the secondary when the primary errors
// or has no matching row.
func (f *Fallback) Lookup(ctx context.Context, spec TableSpec, key string) (Row, bool) {
	if key == "" {
		return nil, false
	}
	if f.primary != nil {
		row, ok, err := f.primary.Lookup(ctx, spec, key)
		if err != nil {
			logger.Warn("remote lookup failed, checking local file",
				zap.String("table", spec.Sheet), zap.Error(err))
		} else if ok {
			return row, true
		}
	}
	row, ok, err := f.secondary.Lookup(ctx, spec, key)
	if err != nil {
		logger.Warn("local lookup failed", zap.String("file", spec.File), zap.Error(err))
		return nil, false
	}
	return row, ok
}

func success(out Outcome, tier Tier) Result {
	return Result{OK: true, Outcome: out, Tier: tier, Message: message(out, tier)}
}

func failure(spec TableSpec, err error) Result {
	name := spec.Name
	if name == "" {
		name = "record"
	}
	return Result{OK: false, Message: fmt.Sprintf("error saving %s: %v", name, err)}
}

func message(out Outcome, tier Tier) string {
	switch {
	case tier == Remote && out == Updated:
		return "updated in Google Sheets"
	case tier == Remote:
		return "saved to Google Sheets"
	case out == Updated:
		return "updated locally"
	default:
		return "saved locally"
	}
}
