package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionPayload = `{
	"photos": [
		{
			"id": "p1",
			"title": "Dawn at Vestrahorn",
			"caption": "First light on the dunes",
			"location": "Stokksnes, Iceland",
			"takenAt": "2024-06-15T04:12:00Z",
			"tags": [
				{"name": "Landscape", "slug": "landscape"},
				{"_ref": "tag-7"},
				{}
			],
			"image": {"assetId": "img-1", "baseUrl": "https://cdn.example.com", "width": 6000, "height": 4000},
			"quality": "high"
		},
		{
			"id": "p2",
			"createdAt": "2024-07-01",
			"takenAt": "not-a-date",
			"tags": [{"id": "tag-9"}],
			"image": {"assetId": "img-2", "baseUrl": "https://cdn.example.com"},
			"protected": true
		}
	]
}`

func TestFetchCollection(t *testing.T) {
	var gotAuth, gotCollection string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCollection = r.URL.Query().Get("collection")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(collectionPayload))
	}))
	defer server.Close()

	client := NewCMSClient(server.URL, "secret")
	photos, err := client.FetchCollection(context.Background(), "iceland")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "iceland", gotCollection)
	require.Len(t, photos, 2)

	p1 := photos[0]
	assert.Equal(t, "Dawn at Vestrahorn", p1.Title)
	assert.Equal(t, QualityHigh, p1.Quality)
	assert.Equal(t, time.Date(2024, 6, 15, 4, 12, 0, 0, time.UTC), p1.TakenAt)
	assert.True(t, p1.Source.Remote())
	require.Len(t, p1.Tags, 2, "empty tag reference is dropped")
	assert.Equal(t, ResolvedTag{Name: "Landscape", Slug: "landscape"}, p1.Tags[0])
	assert.Equal(t, TagRef{ID: "tag-7"}, p1.Tags[1])

	p2 := photos[1]
	assert.True(t, p2.Protected)
	assert.Equal(t, QualityMedium, p2.Quality, "missing quality defaults to medium")
	assert.True(t, p2.TakenAt.IsZero(), "unparseable timestamp becomes zero time")
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), p2.CreatedAt, "bare dates are accepted")
	require.Len(t, p2.Tags, 1)
	assert.Equal(t, TagRef{ID: "tag-9"}, p2.Tags[0])
}

func TestFetchCollectionEmptySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("collection"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"photos": []}`))
	}))
	defer server.Close()

	photos, err := NewCMSClient(server.URL, "").FetchCollection(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestFetchCollectionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewCMSClient(server.URL, "").FetchCollection(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestParseCMSTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-06-15T04:12:00Z", time.Date(2024, 6, 15, 4, 12, 0, 0, time.UTC)},
		{"bare date", "2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCMSTime(tt.input))
		})
	}
}
