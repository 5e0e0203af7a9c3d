package tabular

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/papapumpkin/foundry/internal/logging"
)

// Reload is emitted by a Watcher after the source file changed on disk.
// Err is set when the reload failed; the source then still holds the
// previous snapshot.
type Reload struct {
	Snapshot *Snapshot
	Err      error
}

// Watcher reloads a Source whenever its backing file changes.
type Watcher struct {
	Reloads <-chan Reload // Read-only external channel

	source   *Source
	file     string
	debounce time.Duration
	reloads  chan Reload
	done     chan struct{}
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	started  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for src's current backing file.
func NewWatcher(src *Source, log *zap.Logger) (*Watcher, error) {
	log = logging.OrNop(log)
	path := src.Snapshot().Path
	if path == "" {
		return nil, ErrNoSource
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Reload, 4)
	return &Watcher{
		Reloads:  ch,
		source:   src,
		file:     abs,
		debounce: 100 * time.Millisecond,
		reloads:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		log:      log,
	}, nil
}

// Start begins watching. The directory is watched rather than the file so
// editors that save by rename are still seen. A failed Start releases the
// underlying watcher.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.file)); err != nil {
		w.watcher.Close()
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Reloads channel. It is safe to call when
// Start never ran or failed, and more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.reloads)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.reload()
				}
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("tabular watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	err := w.source.Reload()
	if err != nil {
		w.log.Warn("tabular reload failed", zap.String("path", w.file), zap.Error(err))
	}
	select {
	case w.reloads <- Reload{Snapshot: w.source.Snapshot(), Err: err}:
	default:
		w.log.Debug("tabular reload not delivered, channel full")
	}
}
