package monitoring

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher 监视已加载的数据集和模型文件. Changes are reported, never reloaded.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]string // cleaned path -> artifact name
	logger  *zap.Logger
	metrics *Metrics
	onEvent func(artifact string, op fsnotify.Op)

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewWatcher watches the parent directory of every file in artifacts
// (name -> path). Watching directories catches editors that replace files.
func NewWatcher(artifacts map[string]string, logger *zap.Logger, metrics *Metrics) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		watcher: fw,
		files:   make(map[string]string, len(artifacts)),
		logger:  logger.Named("watcher"),
		metrics: metrics,
		done:    make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for name, path := range artifacts {
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = name
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Start 启动事件循环
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	name, ok := w.files[abs]
	if !ok {
		return
	}

	w.logger.Warn("artifact changed on disk; restart to load the new version",
		zap.String("artifact", name),
		zap.String("path", abs),
		zap.String("op", event.Op.String()))
	w.metrics.ArtifactChanged(name)
	if w.onEvent != nil {
		w.onEvent(name, event.Op)
	}
}

// Close 停止监视
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
