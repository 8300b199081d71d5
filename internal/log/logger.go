package log

import "go.uber.org/zap"

var base = zap.NewNop()

// Init builds the process logger (production JSON or dev console) and
// installs it as the package logger.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// L returns the package logger. Nop until Init runs, so library code can log
// unconditionally.
func L() *zap.Logger { return base }

func Sync() { _ = base.Sync() }
