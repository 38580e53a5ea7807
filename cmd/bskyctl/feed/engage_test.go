// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bskyctl/bskyctl/cmd/bskyctl/cli"
	"github.com/bskyctl/bskyctl/lib/atproto"
	"github.com/bskyctl/bskyctl/lib/ratelimit"
)

// newTestConn builds an unthrottled connection against a test server.
func newTestConn(t *testing.T, server *httptest.Server) *cli.Conn {
	t.Helper()
	client, err := atproto.NewClient(atproto.Config{Service: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.SetSession(atproto.Session{
		AccessJWT: "access", RefreshJWT: "refresh",
		Handle: "me.bsky.social", DID: "did:plc:me",
	})
	limiter := ratelimit.Nop()
	return &cli.Conn{
		Client:  client,
		Limiter: limiter,
		Caller:  &ratelimit.Caller{Limiter: limiter, Retryable: atproto.IsRateLimited},
		Profile: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDeleteRKey(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"3kxyz", "3kxyz"},
		{"at://did:plc:me/app.bsky.feed.post/3kxyz", "3kxyz"},
		{"https://bsky.app/profile/me.bsky.social/post/3kxyz", "3kxyz"},
		{"https://bsky.app/profile/me.bsky.social/post/3kxyz/", "3kxyz"},
		{" 3kxyz ", "3kxyz"},
	}

	for _, test := range tests {
		if got := deleteRKey(test.ref); got != test.want {
			t.Errorf("deleteRKey(%q) = %q, want %q", test.ref, got, test.want)
		}
	}
}

func TestResolvePostRef_URL(t *testing.T) {
	var handleQueries, postQueries []string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/xrpc/com.atproto.identity.resolveHandle":
			handleQueries = append(handleQueries, request.URL.Query().Get("handle"))
			json.NewEncoder(writer).Encode(map[string]string{"did": "did:plc:alice"})
		case "/xrpc/app.bsky.feed.getPosts":
			postQueries = append(postQueries, request.URL.Query().Get("uris"))
			json.NewEncoder(writer).Encode(map[string][]atproto.Post{
				"posts": {{
					URI: "at://did:plc:alice/app.bsky.feed.post/3kxyz",
					CID: "bafypost",
				}},
			})
		default:
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	conn := newTestConn(t, server)

	resolved, err := resolvePostRef(context.Background(), conn,
		"https://bsky.app/profile/alice.bsky.social/post/3kxyz")
	if err != nil {
		t.Fatalf("resolvePostRef: %v", err)
	}

	if len(handleQueries) != 1 || handleQueries[0] != "alice.bsky.social" {
		t.Errorf("resolveHandle queries = %v, want one for the URL author", handleQueries)
	}
	if len(postQueries) != 1 || postQueries[0] != "at://did:plc:alice/app.bsky.feed.post/3kxyz" {
		t.Errorf("getPosts queries = %v", postQueries)
	}
	if resolved.URI != "at://did:plc:alice/app.bsky.feed.post/3kxyz" || resolved.CID != "bafypost" {
		t.Errorf("resolved = %+v", resolved)
	}
	if resolved.target() != "https://bsky.app/profile/alice.bsky.social/post/3kxyz" {
		t.Errorf("target() = %q, want the public URL", resolved.target())
	}
}

func TestResolvePostRef_ATURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/xrpc/app.bsky.feed.getPosts":
			json.NewEncoder(writer).Encode(map[string][]atproto.Post{
				"posts": {{
					URI: "at://did:plc:alice/app.bsky.feed.post/3kxyz",
					CID: "bafypost",
				}},
			})
		default:
			// An at:// reference must not trigger a handle resolution.
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	conn := newTestConn(t, server)

	resolved, err := resolvePostRef(context.Background(), conn,
		"at://did:plc:alice/app.bsky.feed.post/3kxyz")
	if err != nil {
		t.Fatalf("resolvePostRef: %v", err)
	}
	if resolved.target() != "at://did:plc:alice/app.bsky.feed.post/3kxyz" {
		t.Errorf("target() = %q, want the at:// URI when no public URL is known", resolved.target())
	}
}

func TestResolvePostRef_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/xrpc/com.atproto.identity.resolveHandle":
			json.NewEncoder(writer).Encode(map[string]string{"did": "did:plc:alice"})
		case "/xrpc/app.bsky.feed.getPosts":
			json.NewEncoder(writer).Encode(map[string][]atproto.Post{"posts": {}})
		}
	}))
	defer server.Close()
	conn := newTestConn(t, server)

	// URL references get the reposter-link tip; a hydration miss
	// usually means the user pasted a repost's URL.
	_, err := resolvePostRef(context.Background(), conn,
		"https://bsky.app/profile/alice.bsky.social/post/3kgone")
	if err == nil || !strings.Contains(err.Error(), "ORIGINAL post URL") {
		t.Errorf("URL miss error = %v, want tip about the original URL", err)
	}

	_, err = resolvePostRef(context.Background(), conn,
		"at://did:plc:alice/app.bsky.feed.post/3kgone")
	if err == nil || strings.Contains(err.Error(), "ORIGINAL") {
		t.Errorf("at:// miss error = %v, want plain resolve failure", err)
	}
}

func TestResolvePostRef_BadReference(t *testing.T) {
	// Parsing fails before any network call.
	conn := &cli.Conn{}
	_, err := resolvePostRef(context.Background(), conn, "not-a-post")
	if err == nil || !strings.Contains(err.Error(), "unsupported post reference") {
		t.Errorf("error = %v, want unsupported reference", err)
	}
}

func TestViewerRefs(t *testing.T) {
	// 3kliked carries a viewer like record; 3kcold has no viewer
	// object at all.
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		post := atproto.Post{URI: request.URL.Query().Get("uris")}
		if strings.Contains(post.URI, "3kliked") {
			post.Viewer = &atproto.PostViewer{Like: "at://did:plc:me/app.bsky.feed.like/3klike"}
		}
		json.NewEncoder(writer).Encode(map[string][]atproto.Post{"posts": {post}})
	}))
	defer server.Close()
	conn := newTestConn(t, server)

	likeURI, repostURI, err := viewerRefs(context.Background(), conn,
		"at://did:plc:alice/app.bsky.feed.post/3kliked")
	if err != nil {
		t.Fatalf("viewerRefs: %v", err)
	}
	if likeURI != "at://did:plc:me/app.bsky.feed.like/3klike" {
		t.Errorf("likeURI = %q", likeURI)
	}
	if repostURI != "" {
		t.Errorf("repostURI = %q, want empty", repostURI)
	}

	likeURI, repostURI, err = viewerRefs(context.Background(), conn,
		"at://did:plc:alice/app.bsky.feed.post/3kcold")
	if err != nil {
		t.Fatalf("viewerRefs: %v", err)
	}
	if likeURI != "" || repostURI != "" {
		t.Errorf("refs = (%q, %q), want empty for missing viewer", likeURI, repostURI)
	}
}

func TestLikeThenDeleteRecords(t *testing.T) {
	var created []recordRequest
	var deleted []recordRequest
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/xrpc/app.bsky.feed.getPosts":
			json.NewEncoder(writer).Encode(map[string][]atproto.Post{
				"posts": {{
					URI: "at://did:plc:alice/app.bsky.feed.post/3kxyz",
					CID: "bafypost",
				}},
			})
		case "/xrpc/com.atproto.repo.createRecord":
			var record recordRequest
			json.NewDecoder(request.Body).Decode(&record)
			created = append(created, record)
			json.NewEncoder(writer).Encode(atproto.RecordRef{
				URI: "at://did:plc:me/app.bsky.feed.like/3klike", CID: "bafylike",
			})
		case "/xrpc/com.atproto.repo.deleteRecord":
			var record recordRequest
			json.NewDecoder(request.Body).Decode(&record)
			deleted = append(deleted, record)
			writer.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
	}))
	defer server.Close()
	conn := newTestConn(t, server)
	ctx := context.Background()

	resolved, err := resolvePostRef(ctx, conn, "at://did:plc:alice/app.bsky.feed.post/3kxyz")
	if err != nil {
		t.Fatalf("resolvePostRef: %v", err)
	}
	ref, err := ratelimit.WriteResult(ctx, conn.Caller, func() (atproto.RecordRef, error) {
		return conn.Client.Like(ctx, atproto.StrongRef{URI: resolved.URI, CID: resolved.CID})
	})
	if err != nil {
		t.Fatalf("Like: %v", err)
	}

	if len(created) != 1 {
		t.Fatalf("createRecord calls = %d, want 1", len(created))
	}
	if created[0].Collection != "app.bsky.feed.like" {
		t.Errorf("collection = %q", created[0].Collection)
	}
	if created[0].Repo != "did:plc:me" {
		t.Errorf("repo = %q, want session DID", created[0].Repo)
	}

	if err := conn.Caller.Write(ctx, func() error {
		return conn.Client.Unlike(ctx, ref.URI)
	}); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("deleteRecord calls = %d, want 1", len(deleted))
	}
	if deleted[0].RKey != "3klike" || deleted[0].Collection != "app.bsky.feed.like" {
		t.Errorf("deleteRecord = %+v", deleted[0])
	}
}

// recordRequest is the decoded shape of repo record calls.
type recordRequest struct {
	Repo       string          `json:"repo"`
	Collection string          `json:"collection"`
	RKey       string          `json:"rkey"`
	Record     json.RawMessage `json:"record"`
}
