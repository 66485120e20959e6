// Package logging provides structured logging for reflectcsv runs.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug) for per-record detail
//   - Console or JSON encoding, written to stderr by default
//   - Automatic context field injection (run.id, input, reflection)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithInput(ctx, "export.json")
//	logger.Info(ctx, "parsed document", zap.Int("records", n))
//
// Library code retrieves the logger with FromContext, which falls back to a
// nop logger.
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLogger()
//	ctx := logging.WithLogger(ctx, tl.Logger)
//	tl.AssertLogged(t, zapcore.WarnLevel, "skipping record")
package logging
