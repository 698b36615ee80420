package repogen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
)

// Pagination holds cursor connection arguments. Forward pagination uses
// First (and optionally After); backward pagination uses Last (and
// optionally Before). A zero Pagination returns every matching object.
type Pagination struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

// Connection is a page of objects.
type Connection[T any] struct {
	Edges      []Edge[T]
	PageInfo   PageInfo
	TotalCount int
}

// Nodes returns the objects of the page in order.
func (c *Connection[T]) Nodes() []T {
	if c == nil {
		return nil
	}
	nodes := make([]T, len(c.Edges))
	for i, e := range c.Edges {
		nodes[i] = e.Node
	}
	return nodes
}

// Edge is an object with its cursor.
type Edge[T any] struct {
	Cursor string
	Node   T
}

// PageInfo describes the position of a page in the full result.
type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

func (p *Pagination) validate() error {
	switch {
	case p.First != nil && p.Last != nil:
		return NewInvalidInputError("pagination: first and last cannot be combined")
	case p.First != nil && *p.First < 0:
		return NewInvalidInputError("pagination: first must be non-negative")
	case p.Last != nil && *p.Last < 0:
		return NewInvalidInputError("pagination: last must be non-negative")
	case p.After != nil && p.First == nil:
		return NewInvalidInputError("pagination: after requires first")
	case p.Before != nil && p.Last == nil:
		return NewInvalidInputError("pagination: before requires last")
	}
	return nil
}

// Paginate returns a cursor connection over the objects matching where.
func (o *Objects[T]) Paginate(ctx context.Context, page *Pagination, where Where, orderBy ...Order) (*Connection[T], error) {
	if page == nil {
		page = &Pagination{}
	}
	if err := page.validate(); err != nil {
		return nil, err
	}
	d, err := o.delegate()
	if err != nil {
		return nil, err
	}
	var (
		conn = &Connection[T]{}
		args = FindArgs{Where: where, OrderBy: orderBy}
		recs []Record
	)
	switch {
	case page.First != nil:
		take := *page.First + 1
		args.Take = &take
		if page.After != nil {
			if args.Cursor, err = o.decodeCursor(*page.After); err != nil {
				return nil, err
			}
			args.Skip = 1
			conn.PageInfo.HasPreviousPage = true
		}
		if recs, err = d.FindMany(ctx, args); err != nil {
			return nil, err
		}
		if len(recs) > *page.First {
			conn.PageInfo.HasNextPage = true
			recs = recs[:*page.First]
		}
	case page.Last != nil:
		take := -(*page.Last + 1)
		args.Take = &take
		if page.Before != nil {
			if args.Cursor, err = o.decodeCursor(*page.Before); err != nil {
				return nil, err
			}
			args.Skip = 1
			conn.PageInfo.HasNextPage = true
		}
		if recs, err = d.FindMany(ctx, args); err != nil {
			return nil, err
		}
		if len(recs) > *page.Last {
			conn.PageInfo.HasPreviousPage = true
			recs = recs[len(recs)-*page.Last:]
		}
	default:
		if recs, err = d.FindMany(ctx, args); err != nil {
			return nil, err
		}
	}
	if conn.TotalCount, err = d.Count(ctx, where); err != nil {
		return nil, err
	}
	conn.Edges = make([]Edge[T], 0, len(recs))
	for _, rec := range recs {
		node, err := o.build(rec)
		if err != nil {
			return nil, err
		}
		cursor, err := o.encodeCursor(rec)
		if err != nil {
			return nil, err
		}
		conn.Edges = append(conn.Edges, Edge[T]{Cursor: cursor, Node: node})
	}
	if n := len(conn.Edges); n > 0 {
		start, end := conn.Edges[0].Cursor, conn.Edges[n-1].Cursor
		conn.PageInfo.StartCursor, conn.PageInfo.EndCursor = &start, &end
	}
	return conn, nil
}

func (o *Objects[T]) encodeCursor(rec Record) (string, error) {
	buf, err := json.Marshal(rec[o.cursorKey])
	if err != nil {
		return "", NewInvalidInputError("cursor field %q: %v", o.cursorKey, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (o *Objects[T]) decodeCursor(cursor string) (Where, error) {
	buf, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, NewInvalidInputError("malformed cursor %q", cursor)
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, NewInvalidInputError("malformed cursor %q", cursor)
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			v = i
		} else if f, err := n.Float64(); err == nil {
			v = f
		}
	}
	return Where{o.cursorKey: v}, nil
}
