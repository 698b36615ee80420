package repogen

import (
	"context"
)

// FindArgs holds the arguments of a read against a Delegate.
type FindArgs struct {
	Where   Where
	OrderBy []Order
	// Cursor positions the read at the object matching it.
	Cursor Where
	// Skip drops objects from the start of the window (after Cursor).
	Skip int
	// Take limits the window. A negative value reads backwards from Cursor.
	// Nil means no limit.
	Take *int
}

// Delegate is the per-model data-access backend an object manager calls.
// Implementations translate the calls to their client (SQL, RPC, ...).
type Delegate interface {
	// FindFirst returns the first matching record, or nil when none matches.
	FindFirst(ctx context.Context, args FindArgs) (Record, error)
	FindMany(ctx context.Context, args FindArgs) ([]Record, error)
	Count(ctx context.Context, where Where) (int, error)
	Create(ctx context.Context, data Record) (Record, error)
	Update(ctx context.Context, where Where, data Record) (Record, error)
	Upsert(ctx context.Context, where Where, create, update Record) (Record, error)
	Delete(ctx context.Context, where Where) (Record, error)
}

// Source hands out the Delegate of a model by name.
type Source interface {
	Delegate(model string) Delegate
}

// Manager is the query capability exposed for every generated model.
type Manager[T any] interface {
	Get(ctx context.Context, where Where, orderBy ...Order) (T, error)
	Filter(ctx context.Context, where Where, orderBy ...Order) ([]T, error)
	Paginate(ctx context.Context, page *Pagination, where Where, orderBy ...Order) (*Connection[T], error)
	Create(ctx context.Context, data Record) (T, error)
	Update(ctx context.Context, data Record, where Where) (T, error)
	Upsert(ctx context.Context, where Where, create, update Record) (T, error)
	Delete(ctx context.Context, where Where) (T, error)
	Count(ctx context.Context, where Where) (int, error)
}

// Objects is the default Manager. It resolves its Delegate lazily through
// the source function, so that generated managers can be declared before the
// application configures its data source.
type Objects[T any] struct {
	model     string
	source    func() Source
	build     func(Record) (T, error)
	cursorKey string
}

// ObjectsOption configures an Objects manager.
type ObjectsOption func(*objectsConfig)

type objectsConfig struct {
	cursorKey string
}

// WithCursorKey sets the field used to build pagination cursors. Default "id".
func WithCursorKey(field string) ObjectsOption {
	return func(c *objectsConfig) {
		if field != "" {
			c.cursorKey = field
		}
	}
}

// NewObjects returns a manager for the named model.
func NewObjects[T any](model string, source func() Source, build func(map[string]any) (T, error), opts ...ObjectsOption) *Objects[T] {
	cfg := &objectsConfig{cursorKey: "id"}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Objects[T]{
		model:     model,
		source:    source,
		build:     build,
		cursorKey: cfg.cursorKey,
	}
}

// Model returns the name of the managed model.
func (o *Objects[T]) Model() string { return o.model }

func (o *Objects[T]) delegate() (Delegate, error) {
	if o.source == nil {
		return nil, ErrNoSource
	}
	src := o.source()
	if src == nil {
		return nil, ErrNoSource
	}
	d := src.Delegate(o.model)
	if d == nil {
		return nil, ErrNoSource
	}
	return d, nil
}

// Get returns the first object matching where, or a NotFoundError.
func (o *Objects[T]) Get(ctx context.Context, where Where, orderBy ...Order) (T, error) {
	var zero T
	d, err := o.delegate()
	if err != nil {
		return zero, err
	}
	rec, err := d.FindFirst(ctx, FindArgs{Where: where, OrderBy: orderBy})
	if err != nil {
		return zero, err
	}
	if rec == nil {
		return zero, NewNotFoundErrorWhere(o.model, where)
	}
	return o.build(rec)
}

// Filter returns all objects matching where.
func (o *Objects[T]) Filter(ctx context.Context, where Where, orderBy ...Order) ([]T, error) {
	d, err := o.delegate()
	if err != nil {
		return nil, err
	}
	recs, err := d.FindMany(ctx, FindArgs{Where: where, OrderBy: orderBy})
	if err != nil {
		return nil, err
	}
	return o.buildAll(recs)
}

// Count returns the number of objects matching where.
func (o *Objects[T]) Count(ctx context.Context, where Where) (int, error) {
	d, err := o.delegate()
	if err != nil {
		return 0, err
	}
	return d.Count(ctx, where)
}

// Create creates an object from data.
func (o *Objects[T]) Create(ctx context.Context, data Record) (T, error) {
	var zero T
	d, err := o.delegate()
	if err != nil {
		return zero, err
	}
	rec, err := d.Create(ctx, data)
	if err != nil {
		return zero, NewMutationError(o.model, "create", err)
	}
	return o.build(rec)
}

// Update updates the object matching where with data.
func (o *Objects[T]) Update(ctx context.Context, data Record, where Where) (T, error) {
	var zero T
	d, err := o.delegate()
	if err != nil {
		return zero, err
	}
	rec, err := d.Update(ctx, where, data)
	if err != nil {
		return zero, NewMutationError(o.model, "update", err)
	}
	return o.build(rec)
}

// Upsert updates the object matching where, or creates it when none matches.
func (o *Objects[T]) Upsert(ctx context.Context, where Where, create, update Record) (T, error) {
	var zero T
	d, err := o.delegate()
	if err != nil {
		return zero, err
	}
	rec, err := d.Upsert(ctx, where, create, update)
	if err != nil {
		return zero, NewMutationError(o.model, "upsert", err)
	}
	return o.build(rec)
}

// Delete deletes the object matching where and returns it.
func (o *Objects[T]) Delete(ctx context.Context, where Where) (T, error) {
	var zero T
	d, err := o.delegate()
	if err != nil {
		return zero, err
	}
	rec, err := d.Delete(ctx, where)
	if err != nil {
		return zero, NewMutationError(o.model, "delete", err)
	}
	return o.build(rec)
}

func (o *Objects[T]) buildAll(recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := o.build(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

var _ Manager[struct{}] = (*Objects[struct{}])(nil)
