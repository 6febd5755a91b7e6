// Package diag collects recoverable generation defects.
//
// Unknown atoms, unresolved aliases and skipped declarations do not stop
// generation. They are recorded here, logged at warn level, and surfaced by
// the generator once the output is produced.
package diag

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/abi-bindgen/errors"
)

// Reporter accumulates diagnostics. The zero value is not usable; use New.
type Reporter struct {
	log   *zap.Logger
	items []*errors.Error
	seen  map[string]struct{}
}

// New creates a Reporter that logs through log. A nil logger is replaced by a
// no-op logger.
func New(log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{
		log:  log,
		seen: make(map[string]struct{}),
	}
}

// Report records err. The same phase, kind, path and type are reported once.
func (r *Reporter) Report(err *errors.Error) {
	if r == nil || err == nil {
		return
	}
	key := string(err.Phase) + "|" + string(err.Kind) + "|" + strings.Join(err.Path, ".") + "|" + err.CType
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.items = append(r.items, err)

	r.log.Warn(err.Detail,
		zap.String("phase", string(err.Phase)),
		zap.String("kind", string(err.Kind)),
		zap.String("path", strings.Join(err.Path, ".")),
		zap.String("ctype", err.CType),
	)
}

// Items returns the recorded diagnostics in report order.
func (r *Reporter) Items() []*errors.Error {
	if r == nil {
		return nil
	}
	return r.items
}

// Count returns how many diagnostics of kind were reported.
func (r *Reporter) Count(kind errors.Kind) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of recorded diagnostics.
func (r *Reporter) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}
