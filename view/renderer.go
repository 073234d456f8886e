// Package view renders HTML templates. The template directory is watched
// with fsnotify and re-parsed on change, so edits show up without a restart.
package view

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"sync"

	"perch/logger"

	"github.com/fsnotify/fsnotify"
)

// Renderer takes a template name and a data bag and writes HTML.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data map[string]interface{}) error
}

// TemplateRenderer implements Renderer on html/template.
type TemplateRenderer struct {
	dir string

	mu  sync.RWMutex
	tpl *template.Template

	watcher *fsnotify.Watcher
}

// NewTemplateRenderer parses every .html file in dir and starts watching the
// directory for changes.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	r := &TemplateRenderer{dir: dir}
	if err := r.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create template watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch template dir %s: %w", dir, err)
	}
	r.watcher = watcher
	go r.watch()

	return r, nil
}

func (r *TemplateRenderer) reload() error {
	tpl, err := template.ParseGlob(filepath.Join(r.dir, "*.html"))
	if err != nil {
		return fmt.Errorf("failed to parse templates in %s: %w", r.dir, err)
	}
	r.mu.Lock()
	r.tpl = tpl
	r.mu.Unlock()
	return nil
}

func (r *TemplateRenderer) watch() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				if err := r.reload(); err != nil {
					// Keep serving the last good template set.
					logger.Error("template reload failed", logger.ErrorField(err))
				} else {
					logger.Debug("templates reloaded", logger.String("event", event.String()))
				}
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("template watcher error", logger.ErrorField(err))
		}
	}
}

// Render executes the named template with the data bag.
func (r *TemplateRenderer) Render(w http.ResponseWriter, name string, data map[string]interface{}) error {
	r.mu.RLock()
	tpl := r.tpl
	r.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// Close stops the directory watcher.
func (r *TemplateRenderer) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}
