// Package assets loads sprite files in the background and hands out opaque
// handles. Loading is fanned out over an ants goroutine pool; callers poll a
// Batch from the tick loop instead of blocking on it. Wait is for callers
// that need deterministic loading, like scripted runs.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults
var defaultFS embed.FS

// Default returns the sprite files compiled into the binary.
func Default() fs.FS {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}

// Handle identifies an asset slot. The zero Handle is never issued.
type Handle uint32

// State describes where an asset is in its load lifecycle.
type State int

const (
	StatePending State = iota
	StateLoaded
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sprite is a glyph-art asset. Each frame is a list of rows.
type Sprite struct {
	Name   string     `yaml:"name"`
	Color  string     `yaml:"color"`
	Frames [][]string `yaml:"frames"`
}

// Size returns the width and height of the largest frame in cells.
func (s *Sprite) Size() (int, int) {
	w, h := 0, 0
	for _, frame := range s.Frames {
		if len(frame) > h {
			h = len(frame)
		}
		for _, row := range frame {
			if n := len([]rune(row)); n > w {
				w = n
			}
		}
	}
	return w, h
}

// Frame returns the frame shown at the given fraction of a full turn.
func (s *Sprite) Frame(turn float64) []string {
	if len(s.Frames) == 0 {
		return nil
	}
	idx := int(turn*float64(len(s.Frames))) % len(s.Frames)
	if idx < 0 {
		idx += len(s.Frames)
	}
	return s.Frames[idx]
}

func parseSprite(data []byte) (*Sprite, error) {
	var sp Sprite
	if err := yaml.Unmarshal(data, &sp); err != nil {
		return nil, err
	}
	if sp.Name == "" {
		return nil, errors.New("sprite has no name")
	}
	if len(sp.Frames) == 0 {
		return nil, fmt.Errorf("sprite %q has no frames", sp.Name)
	}
	return &sp, nil
}

type slot struct {
	path   string
	state  State
	sprite *Sprite
	err    error
}

// Server owns loaded assets and the worker pool that reads them.
type Server struct {
	fsys   fs.FS
	root   string // on-disk directory backing fsys, empty when embedded
	pool   *ants.Pool
	logger *log.Logger

	inflight sync.WaitGroup

	mu     sync.RWMutex
	slots  []*slot
	byPath map[string]Handle
	byName map[string]Handle
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for load failures and reloads.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates an asset server reading from fsys with the given number
// of loader workers.
func NewServer(fsys fs.FS, workers int, opts ...Option) (*Server, error) {
	if workers <= 0 {
		workers = 4
	}
	s := &Server{
		fsys:   fsys,
		logger: log.Default(),
		byPath: make(map[string]Handle),
		byName: make(map[string]Handle),
	}
	for _, opt := range opts {
		opt(s)
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		s.logger.Error("asset loader panicked", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("assets: cannot create loader pool: %w", err)
	}
	s.pool = pool
	return s, nil
}

// NewDirServer creates a server over an on-disk directory. Such servers can
// be watched for hot reload.
func NewDirServer(root string, workers int, opts ...Option) (*Server, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot open %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets: %s is not a directory", root)
	}
	s, err := NewServer(os.DirFS(root), workers, opts...)
	if err != nil {
		return nil, err
	}
	s.root = root
	return s, nil
}

// Root returns the on-disk directory, or "" for embedded assets.
func (s *Server) Root() string {
	return s.root
}

// Close stops the loader pool. Loads still queued are abandoned.
func (s *Server) Close() {
	s.pool.Release()
}

// LoadFolder expands glob patterns (doublestar syntax, e.g. "sprites/**/*.yaml")
// and starts loading every match. It returns immediately.
func (s *Server) LoadFolder(patterns ...string) (*Batch, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(s.fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("assets: bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	b := &Batch{server: s}
	for _, p := range paths {
		b.handles = append(b.handles, s.Load(p))
	}
	return b, nil
}

// Load starts loading a single asset and returns its handle. Loading the same
// path twice returns the existing handle.
func (s *Server) Load(p string) Handle {
	p = path.Clean(p)

	s.mu.Lock()
	if h, ok := s.byPath[p]; ok {
		s.mu.Unlock()
		return h
	}
	s.slots = append(s.slots, &slot{path: p, state: StatePending})
	h := Handle(len(s.slots))
	s.byPath[p] = h
	s.mu.Unlock()

	s.inflight.Add(1)
	err := s.pool.Submit(func() {
		defer s.inflight.Done()
		s.load(h)
	})
	if err != nil {
		s.inflight.Done()
		s.finish(h, nil, fmt.Errorf("assets: cannot schedule %s: %w", p, err))
	}
	return h
}

// Wait blocks until every load started so far has finished.
func (s *Server) Wait() {
	s.inflight.Wait()
}

func (s *Server) load(h Handle) {
	p := s.pathOf(h)
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		s.finish(h, nil, fmt.Errorf("assets: cannot read %s: %w", p, err))
		return
	}
	sp, err := parseSprite(data)
	if err != nil {
		s.finish(h, nil, fmt.Errorf("assets: cannot parse %s: %w", p, err))
		return
	}
	s.finish(h, sp, nil)
}

func (s *Server) finish(h Handle, sp *Sprite, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slots[h-1]
	if err != nil {
		sl.state = StateFailed
		sl.err = err
		s.logger.Warn("asset failed", "path", sl.path, "error", err)
		return
	}
	if sl.sprite != nil && sl.sprite.Name != sp.Name && s.byName[sl.sprite.Name] == h {
		delete(s.byName, sl.sprite.Name)
	}
	sl.state = StateLoaded
	sl.sprite = sp
	sl.err = nil
	s.byName[sp.Name] = h
}

func (s *Server) pathOf(h Handle) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[h-1].path
}

func (s *Server) valid(h Handle) bool {
	return h > 0 && int(h) <= len(s.slots)
}

// State returns the load state of a handle. Unknown handles report failed.
func (s *Server) State(h Handle) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid(h) {
		return StateFailed
	}
	return s.slots[h-1].state
}

// Sprite returns the loaded sprite for a handle.
func (s *Server) Sprite(h Handle) (*Sprite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid(h) || s.slots[h-1].state != StateLoaded {
		return nil, false
	}
	return s.slots[h-1].sprite, true
}

// Lookup finds a loaded sprite handle by sprite name.
func (s *Server) Lookup(name string) (Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byName[name]
	return h, ok
}

// Reload re-reads an already known asset synchronously. Unknown paths are
// ignored and report false.
func (s *Server) Reload(p string) (bool, error) {
	p = path.Clean(p)
	s.mu.RLock()
	h, ok := s.byPath[p]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return true, fmt.Errorf("assets: cannot reload %s: %w", p, err)
	}
	sp, err := parseSprite(data)
	if err != nil {
		// Keep serving the previous version of a broken edit.
		return true, fmt.Errorf("assets: cannot reload %s: %w", p, err)
	}
	s.finish(h, sp, nil)
	s.logger.Info("asset reloaded", "path", p, "sprite", sp.Name)
	return true, nil
}

// Batch tracks a group of handles started together.
type Batch struct {
	server  *Server
	handles []Handle
}

// Handles returns the handles in the batch.
func (b *Batch) Handles() []Handle {
	return b.handles
}

// Done reports whether every asset in the batch finished, successfully or not.
func (b *Batch) Done() bool {
	for _, h := range b.handles {
		if b.server.State(h) == StatePending {
			return false
		}
	}
	return true
}

// Progress returns how many assets finished out of the batch total.
func (b *Batch) Progress() (done, total int) {
	for _, h := range b.handles {
		if b.server.State(h) != StatePending {
			done++
		}
	}
	return done, len(b.handles)
}

// Err joins the errors of every failed asset in the batch.
func (b *Batch) Err() error {
	var errs []error
	b.server.mu.RLock()
	defer b.server.mu.RUnlock()
	for _, h := range b.handles {
		if sl := b.server.slots[h-1]; sl.state == StateFailed {
			errs = append(errs, sl.err)
		}
	}
	return errors.Join(errs...)
}
