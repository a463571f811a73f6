/*
Package batch resolves admin upload paths to batch file contents.

A path is either a local filesystem path or an s3://bucket/key URI. The S3
source is optional; when it is not configured, remote paths are rejected.
*/
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound reports that the upload path does not resolve to a readable file.
var ErrNotFound = errors.New("batch file not found")

// ErrRemoteUnavailable reports an s3:// path given without a configured S3 source.
var ErrRemoteUnavailable = errors.New("remote batch source not configured")

const remoteScheme = "s3://"

// Source resolves an admin-supplied path to the raw bytes of a batch file.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Resolver is the standard Source: local paths from the filesystem, s3://
// paths from the optional remote fetcher.
type Resolver struct {
	remote *s3Fetcher
}

// NewResolver creates a Resolver. cfg may be nil, which disables s3:// paths.
func NewResolver(cfg *RemoteConfig) (*Resolver, error) {
	r := &Resolver{}
	if cfg != nil {
		fetcher, err := newS3Fetcher(*cfg)
		if err != nil {
			return nil, err
		}
		r.remote = fetcher
	}
	return r, nil
}

// Fetch reads the batch file at path.
func (r *Resolver) Fetch(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, remoteScheme) {
		if r.remote == nil {
			return nil, ErrRemoteUnavailable
		}
		return r.remote.Fetch(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read batch file %s: %w", path, err)
	}
	return data, nil
}
