// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

// Session holds the identity and tokens returned by createSession and
// refreshSession.
type Session struct {
	AccessJWT  string `json:"accessJwt"`
	RefreshJWT string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
}

// IsZero reports whether the session carries no credentials.
func (s Session) IsZero() bool {
	return s.AccessJWT == "" && s.RefreshJWT == ""
}

// SessionInfo is the server's view of the current session, from
// com.atproto.server.getSession.
type SessionInfo struct {
	Handle string `json:"handle"`
	DID    string `json:"did"`
	Email  string `json:"email,omitempty"`
}

// Author is the compact actor view embedded in posts, notifications,
// and graph listings.
type Author struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
}

// ActorViewer describes the session account's relationship to an
// actor. Following and FollowedBy hold follow record URIs when the
// relationship exists.
type ActorViewer struct {
	Following  string `json:"following,omitempty"`
	FollowedBy string `json:"followedBy,omitempty"`
}

// Profile is the full actor view from app.bsky.actor.getProfile.
type Profile struct {
	DID            string       `json:"did"`
	Handle         string       `json:"handle"`
	DisplayName    string       `json:"displayName,omitempty"`
	Description    string       `json:"description,omitempty"`
	FollowersCount int          `json:"followersCount"`
	FollowsCount   int          `json:"followsCount"`
	PostsCount     int          `json:"postsCount"`
	Viewer         *ActorViewer `json:"viewer,omitempty"`
}

// PostViewer describes the session account's engagement with a post.
// Like and Repost hold the viewer's record URIs when present, which is
// exactly what deleting the engagement needs.
type PostViewer struct {
	Like   string `json:"like,omitempty"`
	Repost string `json:"repost,omitempty"`
}

// Post is the hydrated post view embedded in timelines and search
// results.
type Post struct {
	URI         string      `json:"uri"`
	CID         string      `json:"cid"`
	Author      Author      `json:"author"`
	Record      PostRecord  `json:"record"`
	LikeCount   int         `json:"likeCount"`
	RepostCount int         `json:"repostCount"`
	ReplyCount  int         `json:"replyCount"`
	Viewer      *PostViewer `json:"viewer,omitempty"`
	IndexedAt   string      `json:"indexedAt,omitempty"`
}

// PostRecord is the app.bsky.feed.post record itself, both as read
// back from feeds and as written by CreatePost.
type PostRecord struct {
	Type      string   `json:"$type,omitempty"`
	Text      string   `json:"text"`
	CreatedAt string   `json:"createdAt,omitempty"`
	Facets    []Facet  `json:"facets,omitempty"`
	Embed     *Embed   `json:"embed,omitempty"`
	Langs     []string `json:"langs,omitempty"`
}

// Embed is the post embed envelope. Only record embeds (quote posts)
// are produced by this tool.
type Embed struct {
	Type   string     `json:"$type"`
	Record *StrongRef `json:"record,omitempty"`
}

// EmbedRecord is the $type of a record (quote) embed.
const EmbedRecord = "app.bsky.embed.record"

// StrongRef is a content-addressed record reference.
type StrongRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// RecordRef is the reference returned when a record is created.
type RecordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// FeedItem is one timeline entry. Reposts and replies carry extra
// context on the wire; only the post itself is consumed here.
type FeedItem struct {
	Post Post `json:"post"`
}

// Notification is one entry from app.bsky.notification.listNotifications.
type Notification struct {
	URI       string `json:"uri"`
	Author    Author `json:"author"`
	Reason    string `json:"reason"`
	IndexedAt string `json:"indexedAt"`
	IsRead    bool   `json:"isRead"`
}
