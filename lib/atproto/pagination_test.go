// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPageIterator_WalksCursorPages(t *testing.T) {
	requests := 0
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requests++
		if got := request.URL.Query().Get("actor"); got != "alice.bsky.social" {
			t.Errorf("actor = %q", got)
		}
		switch request.URL.Query().Get("cursor") {
		case "":
			writer.Write([]byte(`{"followers":[{"did":"did:plc:a","handle":"a.test"},{"did":"did:plc:b","handle":"b.test"}],"cursor":"page2"}`))
		case "page2":
			writer.Write([]byte(`{"followers":[{"did":"did:plc:c","handle":"c.test"}]}`))
		default:
			t.Errorf("unexpected cursor %q", request.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.SetSession(Session{AccessJWT: "access-1"})

	iterator := client.Followers("alice.bsky.social", 100)

	first, err := iterator.Next(context.Background())
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || first[0].Handle != "a.test" {
		t.Errorf("first page = %+v", first)
	}

	second, err := iterator.Next(context.Background())
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 1 || second[0].Handle != "c.test" {
		t.Errorf("second page = %+v", second)
	}

	third, err := iterator.Next(context.Background())
	if err != nil {
		t.Fatalf("after exhaustion: %v", err)
	}
	if third != nil {
		t.Errorf("page after exhaustion = %+v, want nil", third)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2 (no request after done)", requests)
	}
}

func TestPageIterator_Collect(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Query().Get("cursor") {
		case "":
			writer.Write([]byte(`{"follows":[{"handle":"a.test"}],"cursor":"next"}`))
		case "next":
			writer.Write([]byte(`{"follows":[{"handle":"b.test"},{"handle":"c.test"}]}`))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.SetSession(Session{AccessJWT: "access-1"})

	all, err := client.Follows("alice.bsky.social", 100).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("collected %d authors, want 3", len(all))
	}
	if all[2].Handle != "c.test" {
		t.Errorf("last author = %q", all[2].Handle)
	}
}

func TestPageIterator_EmptyPageWithCursorTerminates(t *testing.T) {
	// A server bug that returns the same cursor forever with no items
	// must not loop the iterator.
	requests := 0
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requests++
		writer.Write([]byte(`{"followers":[],"cursor":"stuck"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.SetSession(Session{AccessJWT: "access-1"})

	all, err := client.Followers("alice.bsky.social", 100).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("collected %d authors, want 0", len(all))
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestPageIterator_PropagatesErrors(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadRequest)
		writer.Write([]byte(`{"error":"InvalidRequest","message":"bad actor"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.SetSession(Session{AccessJWT: "access-1"})

	_, err := client.Followers("nope", 100).Next(context.Background())
	if err == nil {
		t.Fatal("expected error from server")
	}
	if got := fmt.Sprint(err); got == "" {
		t.Error("empty error text")
	}
}

func TestPageIterator_PageLimitParameter(t *testing.T) {
	var receivedLimit string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedLimit = request.URL.Query().Get("limit")
		writer.Write([]byte(`{"followers":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.SetSession(Session{AccessJWT: "access-1"})

	if _, err := client.Followers("alice.bsky.social", 50).Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if receivedLimit != "50" {
		t.Errorf("limit = %q, want 50", receivedLimit)
	}
}
