package extractor

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// Extractor turns raw fetch results into listings. Platforms with a
// selector map go through structured goquery extraction, the chotot
// gateway decodes its JSON directly, and everything else falls back to
// regex extraction over visible text. Extraction never fails hard: a
// page that yields nothing just produces zero listings.
type Extractor struct {
	logger port.LoggerPort

	mu        sync.RWMutex
	selectors *selectorSet

	overridePath string
	watcher      *fsnotify.Watcher
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// New builds an extractor from the embedded selector maps, overlaid
// with overridePath when set. A set override file is watched for
// writes and re-read in place, so selector fixes land without a
// restart.
func New(overridePath string, logger port.LoggerPort) (*Extractor, error) {
	set, err := loadSelectorSet(overridePath)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		logger:       logger.WithFields(port.Fields{"component": "extractor"}),
		selectors:    set,
		overridePath: overridePath,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if overridePath != "" {
		if err := e.watchOverride(); err != nil {
			e.logger.Warn("Selector override watch failed, hot reload disabled", port.Fields{
				"path":  overridePath,
				"error": err.Error(),
			})
		}
	}
	return e, nil
}

// Extract implements port.ExtractorPort.
func (e *Extractor) Extract(result domain.RawFetchResult) []domain.Listing {
	if !result.OK() {
		return nil
	}

	if looksLikeJSON(result) {
		listings := e.extractChotot(result)
		if len(listings) > 0 {
			return listings
		}
		// JSON that did not decode as a gateway payload has no visible
		// text worth scanning either.
		return nil
	}

	if platformCfg, ok := e.platformSelectors(result.Platform); ok {
		listings := e.extractStructured(result, platformCfg)
		if len(listings) > 0 {
			return listings
		}
		e.logger.Debug("Structured extraction yielded nothing, trying fallback", port.Fields{
			"platform": result.Platform,
			"url":      result.URL,
		})
	}

	return e.extractFallback(result)
}

// Close stops the override watcher. Safe to call when no file is
// watched.
func (e *Extractor) Close() error {
	if e.watcher == nil {
		return nil
	}
	close(e.stopCh)
	<-e.doneCh
	return e.watcher.Close()
}

func (e *Extractor) platformSelectors(platform string) (PlatformSelectors, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cfg, ok := e.selectors.Platforms[platform]
	return cfg, ok
}

// ListContainer exposes the list-page container selector so the
// browser fetcher can wait for rendered listings. Follows selector
// reloads.
func (e *Extractor) ListContainer(platform string) string {
	cfg, ok := e.platformSelectors(platform)
	if !ok {
		return ""
	}
	return cfg.List.Container
}

// looksLikeJSON detects a gateway response by content type or, for the
// chotot platform, by the body shape.
func looksLikeJSON(result domain.RawFetchResult) bool {
	if strings.Contains(result.ContentType, "json") {
		return true
	}
	if result.Platform != constants.PlatformChotot {
		return false
	}
	trimmed := strings.TrimLeftFunc(string(result.Body[:min(64, len(result.Body))]), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return strings.HasPrefix(trimmed, "{")
}

// watchOverride watches the directory of the override file. Editors
// replace files by rename, so watching the parent keeps events flowing
// across saves.
func (e *Extractor) watchOverride() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(e.overridePath)); err != nil {
		watcher.Close()
		return err
	}
	e.watcher = watcher

	go e.watchLoop()
	return nil
}

func (e *Extractor) watchLoop() {
	defer close(e.doneCh)

	base := filepath.Base(e.overridePath)
	for {
		select {
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			e.reload()
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn("Selector watcher error", port.Fields{"error": err.Error()})
		case <-e.stopCh:
			return
		}
	}
}

// reload re-reads the override on top of the embedded defaults. A
// broken override keeps the previous set so a half-written save never
// blanks the selectors.
func (e *Extractor) reload() {
	set, err := loadSelectorSet(e.overridePath)
	if err != nil {
		e.logger.Warn("Selector override reload failed, keeping previous selectors", port.Fields{
			"path":  e.overridePath,
			"error": err.Error(),
		})
		return
	}

	e.mu.Lock()
	e.selectors = set
	e.mu.Unlock()

	e.logger.Info("Selector override reloaded", port.Fields{"path": e.overridePath})
}

