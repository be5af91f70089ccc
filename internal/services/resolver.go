// Direct-link resolution: download-info, signing page, signed URL, audio bytes
package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/ymx/internal/models"
	"github.com/desertthunder/ymx/internal/shared"
)

// signSalt prefixes the signed material of every direct link.
const signSalt = "XGRlBW9FXlekgbPrRHuSiA"

// Resolver turns track identifiers into audio bytes.
//
// Each call performs three sequential round trips: the download-info
// listing, the signing page of the selected descriptor, and the signed
// direct link. Nothing is cached and nothing is retried.
type Resolver struct {
	client *Client
	now    func() time.Time
}

// NewResolver creates a resolver that shares the client's HTTP stack and rate limiter.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client, now: time.Now}
}

// DownloadInfo lists the download descriptors offered for a track.
func (r *Resolver) DownloadInfo(ctx context.Context, id models.TrackID) ([]models.DownloadDescriptor, error) {
	var resp envelope[[]models.DownloadDescriptor]
	endpoint := fmt.Sprintf("/tracks/%s/download-info", id)
	if err := r.client.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

type signingPage struct {
	XMLName xml.Name `xml:"download-info"`
	Host    string   `xml:"host"`
	Path    string   `xml:"path"`
	TS      string   `xml:"ts"`
	Region  string   `xml:"region"`
	S       string   `xml:"s"`
}

// SigningDescriptor fetches and parses the signing page referenced by desc.
func (r *Resolver) SigningDescriptor(ctx context.Context, desc models.DownloadDescriptor) (models.SigningDescriptor, error) {
	if desc.InfoURL == "" {
		return models.SigningDescriptor{}, fmt.Errorf("%w: descriptor has no info url", shared.ErrResolution)
	}

	body, err := r.client.send(ctx, http.MethodGet, desc.InfoURL)
	if err != nil {
		return models.SigningDescriptor{}, err
	}

	return ParseSigningPage(body)
}

// ParseSigningPage extracts host, path, s and ts from a signing page document.
func ParseSigningPage(body []byte) (models.SigningDescriptor, error) {
	var page signingPage
	if err := xml.Unmarshal(body, &page); err != nil {
		return models.SigningDescriptor{}, fmt.Errorf("%w: signing page: %v", shared.ErrParse, err)
	}

	sd := models.SigningDescriptor{
		Host: strings.TrimSpace(page.Host),
		Path: strings.TrimSpace(page.Path),
		S:    strings.TrimSpace(page.S),
		TS:   strings.TrimSpace(page.TS),
	}

	fields := []struct{ name, value string }{
		{"host", sd.Host}, {"path", sd.Path}, {"s", sd.S}, {"ts", sd.TS},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return models.SigningDescriptor{}, fmt.Errorf("%w: signing page missing %s", shared.ErrResolution, strings.Join(missing, ", "))
	}

	return sd, nil
}

// Sign computes the hex md5 signature over the salt, the path without its leading character, and s.
func Sign(sd models.SigningDescriptor) string {
	path := sd.Path
	if path != "" {
		path = path[1:]
	}
	sum := md5.Sum([]byte(signSalt + path + sd.S))
	return hex.EncodeToString(sum[:])
}

// DirectLink builds the signed download URL for sd.
func DirectLink(sd models.SigningDescriptor) string {
	return fmt.Sprintf("https://%s/get-mp3/%s/%s%s", sd.Host, Sign(sd), sd.TS, sd.Path)
}

// DirectLinkFor runs the first two round trips and returns the selected descriptor and signed URL.
func (r *Resolver) DirectLinkFor(ctx context.Context, id models.TrackID) (models.DownloadDescriptor, string, error) {
	descriptors, err := r.DownloadInfo(ctx, id)
	if err != nil {
		return models.DownloadDescriptor{}, "", err
	}
	if len(descriptors) == 0 {
		return models.DownloadDescriptor{}, "", fmt.Errorf("%w: no download descriptors for track %s", shared.ErrResolution, id)
	}

	desc := descriptors[0]
	sd, err := r.SigningDescriptor(ctx, desc)
	if err != nil {
		return desc, "", err
	}

	return desc, DirectLink(sd), nil
}

// Resolve downloads the audio bytes of a track.
func (r *Resolver) Resolve(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error) {
	_, link, err := r.DirectLinkFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Download(ctx, id, link)
}

// Download fetches the audio bytes behind a direct link.
func (r *Resolver) Download(ctx context.Context, id models.TrackID, link string) (*models.TrackAudioBlob, error) {
	data, err := r.client.send(ctx, http.MethodGet, link)
	if err != nil {
		return nil, err
	}

	return &models.TrackAudioBlob{TrackID: id, FetchedAt: r.now(), Data: data}, nil
}
