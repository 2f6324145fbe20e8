package rowstore

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter is an equality filter over row columns.
type Filter map[string]any

// Store is the generic CRUD surface the domain services depend on. The
// row store owns all state; services never patch local copies, they
// mutate through this interface and re-fetch.
type Store interface {
	// SelectAll loads every row matching the filters into dest (a pointer
	// to a slice of row structs).
	SelectAll(ctx context.Context, dest any, filters Filter, opts ...Option) error
	// SelectOne loads a single matching row into dest. Returns ErrNotFound
	// when no row matches.
	SelectOne(ctx context.Context, dest any, filters Filter, opts ...Option) error
	// Insert creates a new row from value.
	Insert(ctx context.Context, value any) error
	// Update applies changes to all rows of model's table matching the
	// filters and reports how many rows were touched.
	Update(ctx context.Context, model any, filters Filter, changes map[string]any) (int64, error)
	// Delete removes all rows matching the filters. Deleting zero rows is
	// not an error.
	Delete(ctx context.Context, model any, filters Filter) (int64, error)
	// Upsert inserts value, updating assignColumns when a row with the
	// same conflictColumns already exists. With no assignColumns the
	// conflicting insert becomes a no-op.
	Upsert(ctx context.Context, value any, conflictColumns []string, assignColumns []string) error
	// Transaction runs fn against a store bound to a single database
	// transaction, rolling back when fn returns an error.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// Client implements Store on top of the backing Postgres row store.
type Client struct {
	db *gorm.DB
}

// NewClient creates a row store client.
func NewClient(db *gorm.DB) *Client {
	return &Client{db: db}
}

// queryOptions collects per-query modifiers.
type queryOptions struct {
	expands []string
	wheres  []whereCond
	order   string
	limit   int
}

type whereCond struct {
	cond string
	args []any
}

// Option modifies a select query.
type Option func(*queryOptions)

// WithExpand joins the named foreign-row associations into the result.
func WithExpand(associations ...string) Option {
	return func(o *queryOptions) {
		o.expands = append(o.expands, associations...)
	}
}

// WithWhere adds a raw predicate the equality filters cannot express,
// e.g. "refund_id IS NOT NULL".
func WithWhere(cond string, args ...any) Option {
	return func(o *queryOptions) {
		o.wheres = append(o.wheres, whereCond{cond: cond, args: args})
	}
}

// WithOrder sets the result ordering, e.g. "created_at DESC".
func WithOrder(order string) Option {
	return func(o *queryOptions) {
		o.order = order
	}
}

// WithLimit caps the number of returned rows.
func WithLimit(n int) Option {
	return func(o *queryOptions) {
		o.limit = n
	}
}

func (c *Client) query(ctx context.Context, filters Filter, opts []Option) *gorm.DB {
	var options queryOptions
	for _, opt := range opts {
		opt(&options)
	}

	q := c.db.WithContext(ctx)
	for _, col := range sortedKeys(filters) {
		q = q.Where(fmt.Sprintf("%s = ?", col), filters[col])
	}
	for _, w := range options.wheres {
		q = q.Where(w.cond, w.args...)
	}
	for _, assoc := range options.expands {
		q = q.Preload(assoc)
	}
	if options.order != "" {
		q = q.Order(options.order)
	}
	if options.limit > 0 {
		q = q.Limit(options.limit)
	}
	return q
}

// SelectAll loads all rows matching the filters.
func (c *Client) SelectAll(ctx context.Context, dest any, filters Filter, opts ...Option) error {
	if err := c.query(ctx, filters, opts).Find(dest).Error; err != nil {
		return classify(err)
	}
	return nil
}

// SelectOne loads a single row matching the filters.
func (c *Client) SelectOne(ctx context.Context, dest any, filters Filter, opts ...Option) error {
	if err := c.query(ctx, filters, opts).First(dest).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Insert creates a new row.
func (c *Client) Insert(ctx context.Context, value any) error {
	if err := c.db.WithContext(ctx).Create(value).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Update applies changes to matching rows.
func (c *Client) Update(ctx context.Context, model any, filters Filter, changes map[string]any) (int64, error) {
	q := c.db.WithContext(ctx).Model(model)
	for _, col := range sortedKeys(filters) {
		q = q.Where(fmt.Sprintf("%s = ?", col), filters[col])
	}
	result := q.Updates(changes)
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes matching rows.
func (c *Client) Delete(ctx context.Context, model any, filters Filter) (int64, error) {
	q := c.db.WithContext(ctx)
	for _, col := range sortedKeys(filters) {
		q = q.Where(fmt.Sprintf("%s = ?", col), filters[col])
	}
	result := q.Delete(model)
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return result.RowsAffected, nil
}

// Upsert inserts value or updates assignColumns on conflict.
func (c *Client) Upsert(ctx context.Context, value any, conflictColumns []string, assignColumns []string) error {
	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, col := range conflictColumns {
		columns = append(columns, clause.Column{Name: col})
	}

	onConflict := clause.OnConflict{Columns: columns}
	if len(assignColumns) > 0 {
		onConflict.DoUpdates = clause.AssignmentColumns(assignColumns)
	} else {
		onConflict.DoNothing = true
	}

	if err := c.db.WithContext(ctx).Clauses(onConflict).Create(value).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Transaction runs fn inside a single database transaction.
func (c *Client) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Client{db: tx})
	})
}

// Health verifies the backing connection.
func (c *Client) Health(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("row store connection error: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// sortedKeys keeps generated SQL deterministic across calls.
func sortedKeys(filters Filter) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
