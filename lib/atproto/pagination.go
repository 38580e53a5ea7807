// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// PageIterator walks a cursor-paginated XRPC collection one page at a
// time. T is the element type under the response's items key.
type PageIterator[T any] struct {
	client   *Client
	method   string
	query    url.Values
	itemsKey string

	cursor string
	done   bool
}

// newPageIterator builds an iterator for an XRPC method whose response
// envelope is {"<itemsKey>": [...], "cursor": "..."}.
func newPageIterator[T any](client *Client, method string, query url.Values, itemsKey string) *PageIterator[T] {
	return &PageIterator[T]{
		client:   client,
		method:   method,
		query:    query,
		itemsKey: itemsKey,
	}
}

// Next fetches the next page. It returns nil items once the collection
// is exhausted; callers loop until that.
func (iterator *PageIterator[T]) Next(ctx context.Context) ([]T, error) {
	if iterator.done {
		return nil, nil
	}

	query := url.Values{}
	for key, values := range iterator.query {
		query[key] = values
	}
	if iterator.cursor != "" {
		query.Set("cursor", iterator.cursor)
	}

	var envelope map[string]json.RawMessage
	if err := iterator.client.get(ctx, iterator.method, query, &envelope); err != nil {
		return nil, err
	}

	var items []T
	if raw, ok := envelope[iterator.itemsKey]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("atproto: decoding %s page: %w", iterator.itemsKey, err)
		}
	}

	iterator.cursor = ""
	if raw, ok := envelope["cursor"]; ok {
		if err := json.Unmarshal(raw, &iterator.cursor); err != nil {
			return nil, fmt.Errorf("atproto: decoding cursor: %w", err)
		}
	}
	// An absent cursor means the last page; an empty page guards
	// against servers that keep returning the same cursor.
	if iterator.cursor == "" || len(items) == 0 {
		iterator.done = true
	}
	return items, nil
}

// Collect drains the iterator and returns all remaining items.
func (iterator *PageIterator[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for {
		page, err := iterator.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
	}
}
