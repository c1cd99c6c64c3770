package sdk

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"time"
)

// File is stored file metadata
type File struct {
	ID        string `json:"$id"`
	BucketID  string `json:"bucketId"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Checksum  string `json:"checksum"`
	CreatedAt string `json:"$createdAt"`
}

// FileToken is a short-lived grant to view one file without a session
type FileToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Storage addresses the files of one bucket
type Storage struct {
	client   *Client
	bucketID string
}

// Storage returns the file API for bucketID
func (c *Client) Storage(bucketID string) *Storage {
	return &Storage{client: c, bucketID: bucketID}
}

func (s *Storage) path(id ...string) string {
	return pathJoin(append([]string{"storage", "buckets", s.bucketID, "files"}, id...)...)
}

// CreateFile uploads r as name. The part's content type comes from the name's extension.
func (s *Storage) CreateFile(ctx context.Context, name string, r io.Reader) (*File, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(name)))
		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := form.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := s.client.newRequest(ctx, http.MethodPost, s.path(), nil, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.send(req)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	defer resp.Body.Close()

	var file File
	if err := decodeJSON(resp, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFile fetches file metadata
func (s *Storage) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	if err := s.client.call(ctx, http.MethodGet, s.path(fileID), nil, nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Download copies the file's bytes into w. Requires a session.
func (s *Storage) Download(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	req, err := s.client.newRequest(ctx, http.MethodGet, s.path(fileID, "download"), nil, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download of %s interrupted: %w", fileID, err)
	}
	return n, nil
}

// CreateFileToken issues a view token for fileID. Requires a session.
func (s *Storage) CreateFileToken(ctx context.Context, fileID string) (*FileToken, error) {
	var token FileToken
	if err := s.client.call(ctx, http.MethodPost, s.path(fileID, "token"), nil, nil, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// FileViewURL returns a URL a third-party viewer can open without credentials
func (s *Storage) FileViewURL(ctx context.Context, fileID string) (string, error) {
	token, err := s.CreateFileToken(ctx, fileID)
	if err != nil {
		return "", err
	}
	q := url.Values{
		"project": {s.client.projectID},
		"token":   {token.Token},
	}
	return s.client.endpoint + s.path(fileID, "view") + "?" + q.Encode(), nil
}

// DeleteFile removes a file
func (s *Storage) DeleteFile(ctx context.Context, fileID string) error {
	return s.client.call(ctx, http.MethodDelete, s.path(fileID), nil, nil, nil)
}
