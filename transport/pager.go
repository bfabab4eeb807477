package transport

import (
	"context"
	"net/url"

	"github.com/goliatone/go-appstore/core"
)

// Pager walks a paginated list endpoint following links.next until absent.
// Pages are fetched exactly once, in order; items are never re-requested,
// deduplicated, or reordered.
type Pager struct {
	client  *Client
	method  string
	next    string
	query   url.Values
	started bool
	done    bool
}

func (p *Pager) More() bool {
	return p != nil && !p.done
}

// Page fetches the next page of resources. After the first fetch the query
// is dropped; continuation URLs carry their own parameters.
func (p *Pager) Page(ctx context.Context) ([]core.Resource, error) {
	if p == nil || p.client == nil {
		return nil, core.NewInternalError("transport: pager requires a client")
	}
	if p.done {
		return []core.Resource{}, nil
	}

	query := p.query
	if p.started {
		query = nil
	}
	doc, err := p.client.Request(ctx, p.method, p.next, query, nil)
	if err != nil {
		p.done = true
		return nil, err
	}
	p.started = true

	if next := doc.Links.Next; next != "" {
		p.next = next
	} else {
		p.done = true
	}
	return doc.Resources()
}
