package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CMSClient fetches photo sequences from the portfolio's headless CMS.
// The viewer itself never fetches; it consumes the photos this client
// returns.
type CMSClient struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewCMSClient builds a client for the given API endpoint. token may be
// empty for public datasets.
func NewCMSClient(endpoint, token string) *CMSClient {
	return &CMSClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: fetchTimeout},
	}
}

// photoDoc is the CMS wire shape for one photo.
type photoDoc struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Caption   string   `json:"caption"`
	Location  string   `json:"location"`
	TakenAt   string   `json:"takenAt"`
	CreatedAt string   `json:"createdAt"`
	Tags      []tagDoc `json:"tags"`
	Image     imageDoc `json:"image"`
	Protected bool     `json:"protected"`
	Quality   string   `json:"quality"`
}

type imageDoc struct {
	AssetID string `json:"assetId"`
	BaseURL string `json:"baseUrl"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// tagDoc accepts both tag wire forms: a resolved document with name and
// slug, or a bare reference carrying only an id.
type tagDoc struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	ID   string `json:"id"`
	Ref  string `json:"_ref"`
}

func (d tagDoc) toTag() (Tag, bool) {
	if d.Name != "" || d.Slug != "" {
		return ResolvedTag{Name: d.Name, Slug: d.Slug}, true
	}
	if id := firstNonEmpty(d.ID, d.Ref); id != "" {
		return TagRef{ID: id}, true
	}
	return nil, false
}

func (d photoDoc) toPhoto() *Photo {
	p := &Photo{
		ID:        d.ID,
		Title:     d.Title,
		Caption:   d.Caption,
		Location:  d.Location,
		TakenAt:   parseCMSTime(d.TakenAt),
		CreatedAt: parseCMSTime(d.CreatedAt),
		Protected: d.Protected,
		Quality:   ParseQuality(d.Quality),
		Source: ImageSource{
			AssetID: d.Image.AssetID,
			BaseURL: d.Image.BaseURL,
			Width:   d.Image.Width,
			Height:  d.Image.Height,
		},
	}
	for _, td := range d.Tags {
		tag, ok := td.toTag()
		if !ok {
			logrus.Warnf("cms: dropping empty tag reference on photo %s", d.ID)
			continue
		}
		p.Tags = append(p.Tags, tag)
	}
	return p
}

// parseCMSTime parses an RFC 3339 timestamp, tolerating a bare date.
// Anything unparseable becomes the zero time; the panel's date policy
// then skips the field instead of rendering garbage.
func parseCMSTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	logrus.Debugf("cms: unparseable timestamp %q", s)
	return time.Time{}
}

// FetchCollection returns the ordered photo sequence for a collection
// slug. An empty slug fetches the full portfolio.
func (c *CMSClient) FetchCollection(ctx context.Context, slug string) ([]*Photo, error) {
	u := c.endpoint + "/photos"
	if slug != "" {
		u += "?collection=" + url.QueryEscape(slug)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching collection %q: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching collection %q: %s: %s", slug, resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Photos []photoDoc `json:"photos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding collection %q: %w", slug, err)
	}

	photos := make([]*Photo, 0, len(payload.Photos))
	for _, doc := range payload.Photos {
		photos = append(photos, doc.toPhoto())
	}
	logrus.Debugf("cms: fetched %d photos for collection %q", len(photos), slug)
	return photos, nil
}
