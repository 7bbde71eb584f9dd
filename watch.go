package bramble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/hajimehoshi/ebiten/v2"
)

// Watch starts watching dir and its subdirectories for changes to loaded
// texture files. Changed paths are queued; ProcessReloads applies them on the
// game goroutine.
func (r *TextureRegistry) Watch(dir string) error {
	if r.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("bramble: watch %s: %w", dir, err)
		}
		r.watcher = w
		r.done = make(chan struct{})
		r.wg.Add(1)
		go r.watchLoop()
	}
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return r.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bramble: watch %s: %w", dir, err)
	}
	logger.Info("watching assets", "dir", dir)
	return nil
}

func (r *TextureRegistry) watchLoop() {
	defer r.wg.Done()
	for {
		select {
		case e, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
					if err := r.watcher.Add(e.Name); err != nil {
						logger.Error("watch new directory", "dir", e.Name, "err", err)
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			abs, err := filepath.Abs(e.Name)
			if err != nil {
				continue
			}
			r.mu.Lock()
			r.pending[abs] = struct{}{}
			r.mu.Unlock()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("asset watcher", "err", err)

		case <-r.done:
			return
		}
	}
}

// ProcessReloads re-decodes every loaded texture whose file changed since the
// last call and returns how many were reloaded. Texture identity is kept.
// Paths that do not belong to a loaded texture are ignored.
func (r *TextureRegistry) ProcessReloads() int {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return 0
	}
	paths := r.pending
	r.pending = make(map[string]struct{})
	r.mu.Unlock()

	n := 0
	for path := range paths {
		t, ok := r.byPath[path]
		if !ok || t.Released() {
			continue
		}
		if err := r.reload(t); err != nil {
			logger.Error("texture reload failed", "path", path, "err", err)
			continue
		}
		n++
	}
	return n
}

// reload swaps t's image for a freshly decoded copy of its file.
func (r *TextureRegistry) reload(t *Texture) error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return err
	}
	img, err := decodeImage(data, formatFromExt(t.path))
	if err != nil {
		return err
	}
	next := ebiten.NewImageFromImage(img)
	t.image.Deallocate()
	t.image = next
	b := next.Bounds()
	t.width, t.height = b.Dx(), b.Dy()
	logger.Info("texture reloaded", "path", t.path, "id", t.id, "w", t.width, "h", t.height)
	return nil
}

// Close stops the file watcher, if any.
func (r *TextureRegistry) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.wg.Wait()
	r.watcher = nil
	if err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return fmt.Errorf("bramble: close watcher: %w", err)
	}
	return nil
}
