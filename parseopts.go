package expr

import "log/slog"

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parseconf) parseconf
}

type (
	powopt   struct{}
	traceopt struct {
		log *slog.Logger
	}
)

// parseconf holds the options for a parse.
type parseconf struct {
	// pow enables the ^ operator.
	pow bool
	// log receives a debug record for each grammar rule entered and left and
	// each token consumed. nil disables tracing.
	log *slog.Logger
}

// Exponents enables parsing "^" as right-associative exponentiation. It binds
// more tightly than unary signs, so "-2^2" is "-(2^2)", but its right operand
// may carry its own sign, as in "2^-1". Without Exponents, "^" is scanned but
// rejected by the parser.
func Exponents() ParseOption {
	return powopt{}
}

func (powopt) parseOption(p parseconf) parseconf {
	p.pow = true
	return p
}

// Trace logs the progress of the parser through the grammar to log at debug
// level. A nil log disables tracing.
func Trace(log *slog.Logger) ParseOption {
	return traceopt{log}
}

func (o traceopt) parseOption(p parseconf) parseconf {
	p.log = o.log
	return p
}
