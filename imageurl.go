package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Quality tier pixel targets and compression parameters. The viewer
// only ever picks a tier; the concrete numbers live here, next to the
// URL builder, so the delivery contract stays in one place.
const (
	widthHigh   = 2048
	widthMedium = 1600
	widthLow    = 1200
	widthThumb  = 320

	qualityParamHigh   = 85
	qualityParamMedium = 80
	qualityParamLow    = 75
	qualityParamThumb  = 70
)

// TierParams returns the pixel width and quality number for a tier.
func TierParams(q Quality) (width, quality int) {
	switch q {
	case QualityHigh:
		return widthHigh, qualityParamHigh
	case QualityLow:
		return widthLow, qualityParamLow
	default:
		return widthMedium, qualityParamMedium
	}
}

// ThumbParams returns the grid thumbnail width and quality number.
func ThumbParams() (width, quality int) {
	return widthThumb, qualityParamThumb
}

// BuildAssetURL converts a remote image source plus desired width and
// quality number into the final delivery URL. The delivery service
// negotiates the encoding itself (auto=format), so no format parameter
// is chosen here.
func BuildAssetURL(src ImageSource, width, quality int) (string, error) {
	if !src.Remote() {
		return "", fmt.Errorf("local source %s has no asset URL", src.Path)
	}
	base := strings.TrimSuffix(src.BaseURL, "/")
	u, err := url.Parse(base + "/" + url.PathEscape(src.AssetID))
	if err != nil {
		return "", fmt.Errorf("parsing asset URL for %s: %w", src.AssetID, err)
	}

	q := u.Query()
	q.Set("w", strconv.Itoa(width))
	q.Set("q", strconv.Itoa(quality))
	q.Set("auto", "format")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// TierURL builds the delivery URL for a photo at its own quality tier.
func TierURL(p *Photo) (string, error) {
	w, q := TierParams(p.Quality)
	return BuildAssetURL(p.Source, w, q)
}
