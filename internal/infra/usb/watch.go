package usb

import (
	"dcimsync/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// MountWatcher signals Wake whenever something appears under a media root,
// which lets the poll loop skip the rest of its sleep when a drive is
// plugged in.
type MountWatcher struct {
	watcher *fsnotify.Watcher
	wake    chan struct{}
	done    chan struct{}
	logger  logging.Logger
}

// Watch starts watching root for new mount points.
func Watch(root string, logger logging.Logger) (*MountWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, err
	}
	m := &MountWatcher{
		watcher: w,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go m.loop()
	return m, nil
}

func (m *MountWatcher) Wake() <-chan struct{} {
	return m.wake
}

func (m *MountWatcher) Close() error {
	err := m.watcher.Close()
	<-m.done
	return err
}

func (m *MountWatcher) loop() {
	defer close(m.done)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			m.logger.Verbosef("Media event: %s", event)
			select {
			case m.wake <- struct{}{}:
			default:
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warnf("Media watcher: %v", err)
		}
	}
}
