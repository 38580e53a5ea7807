// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bskyctl/bskyctl/lib/identity"
)

// followRecord is the repo record for a follow relationship.
type followRecord struct {
	Type      string `json:"$type"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"createdAt"`
}

// Follow creates a follow record for the given DID. Returns the record
// reference needed to undo the follow later.
func (client *Client) Follow(ctx context.Context, subjectDID string) (RecordRef, error) {
	record := followRecord{
		Type:      identity.CollectionFollow,
		Subject:   subjectDID,
		CreatedAt: client.now(),
	}
	return client.createRecord(ctx, identity.CollectionFollow, record)
}

// Unfollow deletes a follow record by its at:// URI, typically taken
// from the profile viewer's following field.
func (client *Client) Unfollow(ctx context.Context, followURI string) error {
	return client.deleteRecord(ctx, followURI)
}

// Followers returns an iterator over the actor's followers. pageLimit
// caps each page (the server maximum is 100).
func (client *Client) Followers(actor string, pageLimit int) *PageIterator[Author] {
	query := url.Values{}
	query.Set("actor", actor)
	query.Set("limit", strconv.Itoa(pageLimit))
	return newPageIterator[Author](client, "app.bsky.graph.getFollowers", query, "followers")
}

// Follows returns an iterator over the actors the given actor follows.
func (client *Client) Follows(actor string, pageLimit int) *PageIterator[Author] {
	query := url.Values{}
	query.Set("actor", actor)
	query.Set("limit", strconv.Itoa(pageLimit))
	return newPageIterator[Author](client, "app.bsky.graph.getFollows", query, "follows")
}

// createRecord writes a record into the session repo and returns its
// reference.
func (client *Client) createRecord(ctx context.Context, collection string, record any) (RecordRef, error) {
	session := client.Session()
	request := struct {
		Repo       string `json:"repo"`
		Collection string `json:"collection"`
		Record     any    `json:"record"`
	}{Repo: session.DID, Collection: collection, Record: record}

	var ref RecordRef
	if err := client.post(ctx, "com.atproto.repo.createRecord", request, &ref); err != nil {
		return RecordRef{}, fmt.Errorf("creating %s record: %w", collection, err)
	}
	return ref, nil
}

// deleteRecord removes a record addressed by its at:// URI from the
// session repo.
func (client *Client) deleteRecord(ctx context.Context, uri string) error {
	parsed, err := identity.ParseATURI(uri)
	if err != nil {
		return err
	}
	request := struct {
		Repo       string `json:"repo"`
		Collection string `json:"collection"`
		RKey       string `json:"rkey"`
	}{Repo: parsed.Authority, Collection: parsed.Collection, RKey: parsed.RKey}

	if err := client.post(ctx, "com.atproto.repo.deleteRecord", request, nil); err != nil {
		return fmt.Errorf("deleting record %s: %w", uri, err)
	}
	return nil
}
