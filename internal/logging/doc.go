// Package logging is brainlib's structured logger, built on zap.
//
// Every record goes through a redaction pass before reaching any output:
// values under sensitive keys (api_key, authorization, question, ...) are
// masked, and provider keys or bearer tokens embedded in messages and
// errors are replaced. Records below warn level may be sampled; warnings
// and errors never are. When telemetry is on, records are also exported
// through the otelzap bridge.
//
//	cfg, err := logging.FromAppConfig(appCfg.Logging, "brainlib")
//	logger, err := logging.NewLogger(cfg, tel.LoggerProvider())
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, id)
//	logger.Warn(ctx, "ask failed", zap.Error(err))
//
// Request ids and trace/span ids in ctx are attached to each record.
package logging
