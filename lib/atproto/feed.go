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

// Timeline fetches the authenticated user's home timeline.
func (client *Client) Timeline(ctx context.Context, limit int) ([]FeedItem, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var response struct {
		Feed []FeedItem `json:"feed"`
	}
	if err := client.get(ctx, "app.bsky.feed.getTimeline", query, &response); err != nil {
		return nil, fmt.Errorf("fetching timeline: %w", err)
	}
	return response.Feed, nil
}

// SearchPosts runs a full-text post search.
func (client *Client) SearchPosts(ctx context.Context, q string, limit int) ([]Post, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("limit", strconv.Itoa(limit))

	var response struct {
		Posts []Post `json:"posts"`
	}
	if err := client.get(ctx, "app.bsky.feed.searchPosts", query, &response); err != nil {
		return nil, fmt.Errorf("searching posts: %w", err)
	}
	return response.Posts, nil
}

// GetPosts hydrates full post views for up to 25 at:// URIs.
func (client *Client) GetPosts(ctx context.Context, uris []string) ([]Post, error) {
	query := url.Values{}
	for _, uri := range uris {
		query.Add("uris", uri)
	}

	var response struct {
		Posts []Post `json:"posts"`
	}
	if err := client.get(ctx, "app.bsky.feed.getPosts", query, &response); err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	return response.Posts, nil
}

// CreatePost publishes a post record. The record's Type and CreatedAt
// are stamped here; callers fill Text, Facets, and Embed.
func (client *Client) CreatePost(ctx context.Context, record PostRecord) (RecordRef, error) {
	record.Type = identity.CollectionPost
	record.CreatedAt = client.now()
	return client.createRecord(ctx, identity.CollectionPost, record)
}

// DeletePost removes a post record by its at:// URI.
func (client *Client) DeletePost(ctx context.Context, postURI string) error {
	return client.deleteRecord(ctx, postURI)
}

// subjectRecord is the shared shape of like and repost records, both
// of which point at a post by strong reference.
type subjectRecord struct {
	Type      string    `json:"$type"`
	Subject   StrongRef `json:"subject"`
	CreatedAt string    `json:"createdAt"`
}

// Like creates a like record for the referenced post.
func (client *Client) Like(ctx context.Context, subject StrongRef) (RecordRef, error) {
	record := subjectRecord{
		Type:      identity.CollectionLike,
		Subject:   subject,
		CreatedAt: client.now(),
	}
	return client.createRecord(ctx, identity.CollectionLike, record)
}

// Unlike deletes a like record by its at:// URI, typically taken from
// the post viewer's like field.
func (client *Client) Unlike(ctx context.Context, likeURI string) error {
	return client.deleteRecord(ctx, likeURI)
}

// Repost creates a repost record for the referenced post.
func (client *Client) Repost(ctx context.Context, subject StrongRef) (RecordRef, error) {
	record := subjectRecord{
		Type:      identity.CollectionRepost,
		Subject:   subject,
		CreatedAt: client.now(),
	}
	return client.createRecord(ctx, identity.CollectionRepost, record)
}

// Unrepost deletes a repost record by its at:// URI.
func (client *Client) Unrepost(ctx context.Context, repostURI string) error {
	return client.deleteRecord(ctx, repostURI)
}
