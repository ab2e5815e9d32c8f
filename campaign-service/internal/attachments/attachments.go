// Package attachments stores campaign images in object storage and shapes
// stored attachment rows for presentation.
package attachments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
)

// Uploader puts an object under key.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// ObjectKey builds keys like <prefix>/campaigns/<campaignID>/<id>-<filename>.
func ObjectKey(prefix, campaignID string, id uuid.UUID, filename string) string {
	return path.Join(prefix, "campaigns", SafeName(campaignID), fmt.Sprintf("%s-%s", id, SafeName(filename)))
}

// ObjectURL joins the public base URL and an object key.
func ObjectURL(baseURL, key string) string {
	if baseURL == "" {
		return "/" + strings.TrimPrefix(key, "/")
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// SafeName keeps letters, digits, dots, dashes and underscores; anything
// else becomes a dash.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// ImageContentType reports whether ct is an image type accepted for campaigns.
func ImageContentType(ct string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])) {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}

// GroupByCampaign buckets attachments per campaign, preserving order. Every
// requested id gets a non-nil slice so views serialize [] rather than null.
func GroupByCampaign(ids []string, atts []models.Attachment) map[string][]models.Attachment {
	out := make(map[string][]models.Attachment, len(ids))
	for _, id := range ids {
		out[id] = []models.Attachment{}
	}
	for _, a := range atts {
		if _, ok := out[a.CampaignID]; ok {
			out[a.CampaignID] = append(out[a.CampaignID], a)
		}
	}
	return out
}

// ShapeInline converts an attachment field taken straight from a campaign
// record into attachments. Entries may be bare URL strings or objects with
// url, filename, type, size and thumbnails keys; entries without a URL are
// dropped.
func ShapeInline(campaignID string, raw any) []models.Attachment {
	items, ok := raw.([]any)
	if !ok {
		if s, isString := raw.(string); isString {
			items = []any{s}
		} else {
			return nil
		}
	}
	out := make([]models.Attachment, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if u := strings.TrimSpace(v); u != "" {
				out = append(out, models.Attachment{CampaignID: campaignID, URL: u, Filename: path.Base(u)})
			}
		case map[string]any:
			u, _ := v["url"].(string)
			if strings.TrimSpace(u) == "" {
				continue
			}
			att := models.Attachment{CampaignID: campaignID, URL: u}
			att.Filename, _ = v["filename"].(string)
			att.ContentType, _ = v["type"].(string)
			if size, ok := v["size"].(float64); ok && size > 0 {
				att.Size = int64(size)
			}
			if id, ok := v["id"].(string); ok {
				if parsed, err := uuid.Parse(id); err == nil {
					att.ID = parsed
				}
			}
			if thumbs, ok := v["thumbnails"]; ok && thumbs != nil {
				if b, err := json.Marshal(thumbs); err == nil {
					att.Thumbnails = b
				}
			}
			out = append(out, att)
		}
	}
	return out
}
