package decode

import (
	"github.com/ciniml/remo-api/pkg/log"
	"github.com/ciniml/remo-api/pkg/model"
)

// Options configures a decode call. The zero value (or a nil *Options)
// means defaults: default limits, strict length checking, no logging.
type Options struct {
	// Limits overrides the field-length bounds. Nil means
	// model.DefaultLimits.
	Limits *model.Limits

	// TruncateLongStrings shortens over-long string fields instead of
	// failing with ErrValueTooLong. Off by default: truncated
	// identifiers are misleading, so correctness wins over
	// permissiveness unless explicitly requested.
	TruncateLongStrings bool

	// BufferSize overrides the sequencer's scalar scratch buffer size.
	// Zero picks a size derived from Limits.
	BufferSize int

	// ReadSize overrides the transport read chunk size.
	ReadSize int

	// Logger receives decode telemetry. Nil disables logging.
	Logger log.Logger
}

// options is the resolved form used internally.
type options struct {
	limits   model.Limits
	truncate bool
	bufSize  int
	readSize int
	logger   log.Logger
}

func (o *Options) resolve() options {
	res := options{
		limits: o.limitsOrDefault(),
		logger: log.NoopLogger{},
	}
	if o != nil {
		res.truncate = o.TruncateLongStrings
		res.bufSize = o.BufferSize
		res.readSize = o.ReadSize
		if o.Logger != nil {
			res.logger = o.Logger
		}
	}
	if res.bufSize <= 0 {
		res.bufSize = res.limits.MaxScalarLen()
	}
	return res
}

func (o *Options) limitsOrDefault() model.Limits {
	if o != nil && o.Limits != nil {
		return *o.Limits
	}
	return model.DefaultLimits()
}
