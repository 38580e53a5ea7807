// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"regexp"
	"sort"

	"github.com/bskyctl/bskyctl/lib/identity"
)

// Rich text feature types.
const (
	FeatureLink    = "app.bsky.richtext.facet#link"
	FeatureTag     = "app.bsky.richtext.facet#tag"
	FeatureMention = "app.bsky.richtext.facet#mention"
)

// ByteSlice addresses a span of post text. Offsets are byte positions
// into the UTF-8 encoding, not rune positions.
type ByteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// FacetFeature annotates a text span as a link, hashtag, or mention.
// Exactly one of URI, Tag, or DID is set, matching Type.
type FacetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
	DID  string `json:"did,omitempty"`
}

// Facet attaches features to a byte range of post text.
type Facet struct {
	Index    ByteSlice      `json:"index"`
	Features []FacetFeature `json:"features"`
}

var (
	urlPattern     = regexp.MustCompile(`https?://[^\s]+`)
	tagPattern     = regexp.MustCompile(`#[A-Za-z0-9_]+`)
	mentionPattern = regexp.MustCompile(`@[A-Za-z0-9_.-]+(?:\.[A-Za-z0-9_.-]+)*`)
)

// DetectFacets scans post text for URLs, hashtags, and mentions and
// returns the corresponding facets, ordered by byte offset. Mentions
// require resolving the handle to a DID; resolve failures leave the
// mention as plain text rather than failing the post.
func DetectFacets(text string, resolve func(handle string) (string, error)) []Facet {
	var facets []Facet

	for _, span := range urlPattern.FindAllStringIndex(text, -1) {
		facets = append(facets, Facet{
			Index: ByteSlice{ByteStart: span[0], ByteEnd: span[1]},
			Features: []FacetFeature{{
				Type: FeatureLink,
				URI:  text[span[0]:span[1]],
			}},
		})
	}

	for _, span := range tagPattern.FindAllStringIndex(text, -1) {
		if overlaps(facets, span[0], span[1]) {
			continue
		}
		facets = append(facets, Facet{
			Index: ByteSlice{ByteStart: span[0], ByteEnd: span[1]},
			Features: []FacetFeature{{
				Type: FeatureTag,
				Tag:  text[span[0]+1 : span[1]],
			}},
		})
	}

	for _, span := range mentionPattern.FindAllStringIndex(text, -1) {
		if overlaps(facets, span[0], span[1]) {
			continue
		}
		if resolve == nil {
			continue
		}
		handle := identity.NormalizeHandle(text[span[0]:span[1]])
		did, err := resolve(handle)
		if err != nil || did == "" {
			continue
		}
		facets = append(facets, Facet{
			Index: ByteSlice{ByteStart: span[0], ByteEnd: span[1]},
			Features: []FacetFeature{{
				Type: FeatureMention,
				DID:  did,
			}},
		})
	}

	sort.Slice(facets, func(i, j int) bool {
		return facets[i].Index.ByteStart < facets[j].Index.ByteStart
	})
	return facets
}

// overlaps reports whether [start, end) intersects any existing facet,
// so a "#tag" inside a URL is not double-annotated.
func overlaps(facets []Facet, start, end int) bool {
	for _, facet := range facets {
		if start < facet.Index.ByteEnd && end > facet.Index.ByteStart {
			return true
		}
	}
	return false
}
