package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
)

const debounceDelay = 100 * time.Millisecond

// Loader reads a graph description from path.
type Loader func(path string) (layout.GraphSpec, error)

// Reload replaces the served graph with spec. Nodes that exist in both
// graphs and have no explicit position in spec keep their current one. The
// old simulator is closed and its running state carried over; metrics start
// over with the new graph.
func (s *Server) Reload(spec layout.GraphSpec) error {
	old := s.Simulator()
	prev := make(map[layout.NodeID]layout.Vec2, len(old.Snapshot().Nodes))
	for _, p := range old.Snapshot().Nodes {
		prev[p.ID] = layout.Vec2{X: p.X, Y: p.Y}
	}

	nodes := make([]layout.NodeSpec, len(spec.Nodes))
	copy(nodes, spec.Nodes)
	kept := 0
	for i, n := range nodes {
		if n.Position != nil {
			continue
		}
		if p, ok := prev[n.ID]; ok {
			nodes[i].Position = &p
			kept++
		}
	}
	spec.Nodes = nodes

	next, err := sim.Build(spec, s.cfg, s.opts.SimOptions...)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if !old.Running() {
		next.SetRunning(false)
	}
	// a fresh recorder, so late ticks of the old simulator land in the old one
	rec := newRecorder()
	next.AddObserver(rec)

	s.mu.Lock()
	s.sim = next
	s.rec = rec
	s.gen++
	s.mu.Unlock()
	old.Close()

	s.log.Info("graph reloaded",
		"nodes", len(spec.Nodes),
		"edges", len(spec.Edges),
		"kept", kept,
	)
	return nil
}

// Watch reloads the graph whenever the file at path changes, until ctx is
// done. Bursts of events are coalesced. A file that fails to load is logged
// and the current graph stays in place.
func (s *Server) Watch(ctx context.Context, path string, load Loader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	debounce := time.NewTimer(0)
	<-debounce.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			pending = true
			debounce.Reset(debounceDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", "err", err)
		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			spec, err := load(path)
			if err != nil {
				s.log.Error("reload failed", "path", path, "err", err)
				continue
			}
			if err := s.Reload(spec); err != nil {
				s.log.Error("reload failed", "path", path, "err", err)
			}
		}
	}
}
