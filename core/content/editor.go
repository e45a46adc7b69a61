package content

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/snorwin/jsonpatch"

	"github.com/ecole-ece/vitrine/core"
)

// deps are shared by a Collection and its editors.
type deps struct {
	repo     Repository
	cache    Cache
	observer Observer
	logger   core.Logger
}

func (d *deps) withDefaults() *deps {
	if d.cache == nil {
		d.cache = nopCache{}
	}
	if d.observer == nil {
		d.observer = nopObserver{}
	}
	if d.logger == nil {
		d.logger = nopLogger{}
	}
	return d
}

// Editor edits one content document.
// It is Collapsed (no buffer) or Expanded (buffer is a working copy of the committed content).
type Editor struct {
	deps  *deps
	id    string
	key   string
	title string
	label string

	mu        sync.Mutex
	committed *Node
	updatedAt time.Time
	buffer    *Node // nil while collapsed
	saving    bool
}

// Summary is the collapsed view of an editor.
type Summary struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Label     string    `json:"label"`
	Expanded  bool      `json:"expanded"`
	Dirty     bool      `json:"dirty"`
	Saving    bool      `json:"saving"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Change is one RFC 6902 operation turning the committed content into the buffer.
type Change struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// NewEditor returns a collapsed editor for doc, saving through repo.
func NewEditor(doc Document, repo Repository) (*Editor, error) {
	d := &deps{repo: repo}
	return newEditor(doc, doc.Title, d.withDefaults())
}

func newEditor(doc Document, label string, d *deps) (*Editor, error) {
	root, err := Decode(doc.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "document %q", doc.Key)
	}
	return &Editor{
		deps:      d,
		id:        doc.ID,
		key:       doc.Key,
		title:     doc.Title,
		label:     label,
		committed: root,
		updatedAt: doc.UpdatedAt,
	}, nil
}

func (e *Editor) Key() string   { return e.key }
func (e *Editor) Title() string { return e.title }
func (e *Editor) Label() string { return e.label }

func (e *Editor) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Summary{
		Key:       e.key,
		Title:     e.title,
		Label:     e.label,
		Expanded:  e.buffer != nil,
		Dirty:     e.buffer != nil && !e.buffer.Equal(e.committed),
		Saving:    e.saving,
		UpdatedAt: e.updatedAt,
	}
}

// Committed returns the last saved (or loaded) content.
func (e *Editor) Committed() *Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed
}

func (e *Editor) UpdatedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updatedAt
}

func (e *Editor) Expanded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer != nil
}

func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Dirty reports whether the buffer differs from the committed content.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer != nil && !e.buffer.Equal(e.committed)
}

// Expand starts a new edit session from the committed content, dropping any previous buffer.
func (e *Editor) Expand() *Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = e.committed.Clone()
	return e.buffer
}

// Collapse drops the buffer without saving.
func (e *Editor) Collapse() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = nil
}

// Buffer returns the working copy.
func (e *Editor) Buffer() (*Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return nil, ErrCollapsed
	}
	return e.buffer, nil
}

// Fields renders the working copy.
func (e *Editor) Fields() ([]Field, error) {
	buf, err := e.Buffer()
	if err != nil {
		return nil, err
	}
	return Render(buf), nil
}

func (e *Editor) edit(fn func(*Node) (*Node, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return ErrCollapsed
	}
	updated, err := fn(e.buffer)
	if err != nil {
		return err
	}
	e.buffer = updated
	e.deps.observer.Edited(e.key)
	return nil
}

// SetText replaces the string at path in the buffer.
func (e *Editor) SetText(path Path, s string) error {
	return e.edit(func(buf *Node) (*Node, error) { return SetText(buf, path, s) })
}

// SetLines replaces the string list at path in the buffer.
func (e *Editor) SetLines(path Path, lines []string) error {
	return e.edit(func(buf *Node) (*Node, error) { return SetLines(buf, path, lines) })
}

// Input applies raw widget input at path (see Commit).
func (e *Editor) Input(path Path, input string) error {
	return e.edit(func(buf *Node) (*Node, error) { return Commit(buf, path, input) })
}

// Changes lists the pending edits as a JSON patch against the committed content.
func (e *Editor) Changes() ([]Change, error) {
	e.mu.Lock()
	buf, committed := e.buffer, e.committed
	e.mu.Unlock()
	if buf == nil {
		return nil, ErrCollapsed
	}

	patch, err := jsonpatch.CreateJSONPatch(buf.Interface(), committed.Interface())
	if err != nil {
		return nil, errors.Wrap(err, "diffing content")
	}
	ops := patch.List()
	changes := make([]Change, 0, len(ops))
	for _, op := range ops {
		changes = append(changes, Change{Op: string(op.Operation), Path: op.Path, Value: op.Value})
	}
	return changes, nil
}

// Save replaces the stored content with the whole buffer.
// On failure the buffer is kept as is so that no edit is lost.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.buffer == nil {
		e.mu.Unlock()
		return ErrCollapsed
	}
	if e.saving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	snapshot := e.buffer
	e.saving = true
	e.mu.Unlock()

	start := time.Now()
	updatedAt, err := e.persist(ctx, snapshot)
	e.deps.observer.Saved(e.key, time.Since(start), err)

	e.mu.Lock()
	e.saving = false
	if err == nil {
		// buffer is left alone: it may hold edits typed while the request was in flight,
		// or belong to a newer session if the editor was collapsed meanwhile.
		e.committed = snapshot
		e.updatedAt = updatedAt
	}
	e.mu.Unlock()

	if err != nil {
		e.deps.logger.Error("failed to save", err, map[string]interface{}{"key": e.key})
		return err
	}
	if cErr := e.deps.cache.Delete(ctx, e.key); cErr != nil {
		e.deps.logger.Warn("failed to invalidate cached page", cErr, map[string]interface{}{"key": e.key})
	}
	return nil
}

func (e *Editor) persist(ctx context.Context, snapshot *Node) (time.Time, error) {
	remote, err := e.deps.repo.GetDocument(ctx, e.key)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return time.Time{}, errors.Wrapf(ErrNotFound, "document %q", e.key)
		}
		return time.Time{}, &FailureError{Op: OpSave, Key: e.key, Err: err}
	}
	remoteRoot, err := Decode(remote.Content)
	if err != nil || !SameShape(remoteRoot, snapshot) {
		return time.Time{}, errors.Wrapf(ErrShapeMismatch, "document %q changed shape since it was loaded", e.key)
	}

	raw, err := snapshot.MarshalJSON()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "encoding content")
	}
	updatedAt, err := e.deps.repo.ReplaceContent(ctx, e.key, raw)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return time.Time{}, errors.Wrapf(ErrNotFound, "document %q", e.key)
		}
		return time.Time{}, &FailureError{Op: OpSave, Key: e.key, Err: err}
	}
	return updatedAt, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
