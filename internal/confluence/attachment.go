package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
)

// attachmentList is the wiki's response to a child-attachment lookup.
type attachmentList struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// CheckPage verifies the target page is reachable before any upload attempt.
func (c *Client) CheckPage(ctx context.Context, pageID string) error {
	url := fmt.Sprintf("%s/rest/api/content/%s", c.base, pageID)
	if _, err := c.get(ctx, url, nil); err != nil {
		return fmt.Errorf("page %s unreachable: %w", pageID, err)
	}
	return nil
}

// FindAttachment looks up an existing attachment by exact filename under a
// page. Returns the attachment id, or "" when no attachment matches. When the
// backend returns several results the first wins.
func (c *Client) FindAttachment(ctx context.Context, pageID, filename string) (string, error) {
	url := fmt.Sprintf("%s/rest/api/content/%s/child/attachment", c.base, pageID)
	data, err := c.get(ctx, url, map[string]string{"filename": filename})
	if err != nil {
		return "", err
	}

	var list attachmentList
	if err := json.Unmarshal(data, &list); err != nil {
		return "", fmt.Errorf("decoding attachment list: %w", err)
	}
	if len(list.Results) == 0 {
		return "", nil
	}
	return list.Results[0].ID, nil
}

// UpsertAttachment creates or updates the attachment slot (pageID, filename)
// so that exactly one logical attachment holds the payload afterwards. The
// remote content is fully replaced; no diffing against the previous bytes.
//
// Attachment existence is re-resolved on every call, never cached across
// invocations.
func (c *Client) UpsertAttachment(ctx context.Context, pageID, filename string, payload []byte) (Outcome, error) {
	if err := c.CheckPage(ctx, pageID); err != nil {
		return "", err
	}

	attID, err := c.FindAttachment(ctx, pageID, filename)
	if err != nil {
		return "", fmt.Errorf("looking up attachment %q on page %s: %w", filename, pageID, err)
	}

	if attID != "" {
		url := fmt.Sprintf("%s/rest/api/content/%s/child/attachment/%s/data", c.base, pageID, attID)
		if err := c.uploadMultipart(ctx, url, filename, payload); err != nil {
			return "", fmt.Errorf("attachment update failed: %w", err)
		}
		slog.Info("updated attachment", "page_id", pageID, "filename", filename, "bytes", len(payload))
		return Updated, nil
	}

	url := fmt.Sprintf("%s/rest/api/content/%s/child/attachment", c.base, pageID)
	if err := c.uploadMultipart(ctx, url, filename, payload); err != nil {
		return "", fmt.Errorf("attachment create failed: %w", err)
	}
	slog.Info("created attachment", "page_id", pageID, "filename", filename, "bytes", len(payload))
	return Created, nil
}

// uploadMultipart POSTs the payload as a multipart "file" part. The
// X-Atlassian-Token header suppresses Confluence's XSRF check for API
// uploads.
func (c *Client) uploadMultipart(ctx context.Context, url, filename string, payload []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(payload); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	headers := map[string]string{"X-Atlassian-Token": "no-check"}
	if _, err := c.post(ctx, url, mw.FormDataContentType(), body.Bytes(), headers); err != nil {
		return err
	}
	return nil
}
