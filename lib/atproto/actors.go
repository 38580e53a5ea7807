// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"context"
	"fmt"
	"net/url"
)

// ResolveHandle resolves a handle to its DID.
func (client *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	query := url.Values{}
	query.Set("handle", handle)

	var response struct {
		DID string `json:"did"`
	}
	if err := client.get(ctx, "com.atproto.identity.resolveHandle", query, &response); err != nil {
		return "", fmt.Errorf("resolving handle %s: %w", handle, err)
	}
	return response.DID, nil
}

// GetProfile fetches the full profile view for an actor (handle or
// DID), including the viewer relationship when authenticated.
func (client *Client) GetProfile(ctx context.Context, actor string) (Profile, error) {
	query := url.Values{}
	query.Set("actor", actor)

	var profile Profile
	if err := client.get(ctx, "app.bsky.actor.getProfile", query, &profile); err != nil {
		return Profile{}, fmt.Errorf("fetching profile %s: %w", actor, err)
	}
	return profile, nil
}
