package google

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/mkranz/sheetsync/internal/source"
)

// listPageSize matches the Drive API's recommended page size for file
// listings.
const listPageSize = 100

// DriveClient accesses files and folders via the Drive v3 API. It satisfies
// source.Drive and is always read-only.
type DriveClient struct {
	svc *drive.Service
}

// NewDriveClient builds a Drive client authenticated with the given
// service-account credential file.
func NewDriveClient(ctx context.Context, credentialsFile string) (*DriveClient, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &DriveClient{svc: svc}, nil
}

// Export converts a Google-native file (Sheet, Doc, Slides) to the given MIME
// type and returns the full exported bytes.
func (c *DriveClient) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := c.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Download fetches the raw bytes of a non-native file. The HTTP transport
// streams the body in its own chunks; we read to completion.
func (c *DriveClient) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// List returns every non-trashed file under folderID, following page tokens
// until the listing is exhausted. extraQuery, when non-empty, is ANDed with
// the folder filter using Drive's query syntax.
func (c *DriveClient) List(ctx context.Context, folderID, extraQuery string) ([]source.DriveFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	if extraQuery != "" {
		q += " and " + extraQuery
	}

	var out []source.DriveFile
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(q).
			PageSize(listPageSize).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, f := range res.Files {
			out = append(out, source.DriveFile{
				ID:           f.Id,
				Name:         f.Name,
				MIMEType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         formatSize(f.Size),
			})
		}

		pageToken = res.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

// formatSize renders a file size. Google-native files and folders report no
// size; those come out as empty strings in the listing CSV. The API's int64
// zero value cannot distinguish an absent size from a genuinely empty file,
// so a zero-byte file also lists as "".
func formatSize(size int64) string {
	if size == 0 {
		return ""
	}
	return strconv.FormatInt(size, 10)
}
