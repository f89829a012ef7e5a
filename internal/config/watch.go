package config

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch re-reads the document whenever it changes on disk and hands a fresh
// validated snapshot to fn. A snapshot that fails validation is dropped and
// the previous one stays in effect; a half-written file must never take down
// a running server.
func (p *Provider) Watch(logger *zap.Logger, fn func(*Config)) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Create) {
			return
		}
		cfg, err := p.unmarshal()
		if err != nil {
			logger.Warn("ignoring invalid config change",
				zap.String("file", e.Name),
				zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("file", e.Name))
		fn(cfg)
	})
	p.v.WatchConfig()
}
