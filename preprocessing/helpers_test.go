package preprocessing

import (
	"context"

	"github.com/YuminosukeSato/scisvm/pkg/log"
)

// discard is a Logger that drops everything.
type discard struct{}

func (*discard) Debug(string, ...any)                     {}
func (*discard) Info(string, ...any)                      {}
func (*discard) Warn(string, ...any)                      {}
func (*discard) Error(string, ...any)                     {}
func (d *discard) With(...any) log.Logger                 { return d }
func (*discard) Enabled(context.Context, log.Level) bool { return false }
