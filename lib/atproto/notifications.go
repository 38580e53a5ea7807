// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Notifications fetches the most recent notifications for the
// authenticated user.
func (client *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var response struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := client.get(ctx, "app.bsky.notification.listNotifications", query, &response); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return response.Notifications, nil
}
