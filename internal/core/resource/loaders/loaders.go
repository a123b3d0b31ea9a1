// Package loaders provides resource.Loader implementations for the common
// sources: a filesystem, HTTP and YAML documents layered on either.
package loaders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/zeuscene/internal/core/resource"
)

const chunkSize = 32 * 1024

var ErrUnexpectedStatus = errors.New("loaders: unexpected http status")

// File reads key from fsys in chunks, reporting progress against the file size.
func File(fsys fs.FS) resource.Loader {
	return func(ctx context.Context, key string, progress resource.ProgressFunc) (resource.Resource, error) {
		f, err := fsys.Open(key)
		if err != nil {
			return resource.Resource{}, err
		}
		defer f.Close()

		var total int64
		if info, statErr := f.Stat(); statErr == nil {
			total = info.Size()
		}
		data, err := readAll(ctx, f, total, progress)
		if err != nil {
			return resource.Resource{}, err
		}
		return bytesResource(data), nil
	}
}

// HTTP fetches baseURL+key with client, using Content-Length for progress
// when the server sends one.
func HTTP(client *http.Client, baseURL string) resource.Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return func(ctx context.Context, key string, progress resource.ProgressFunc) (resource.Resource, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+key, nil)
		if err != nil {
			return resource.Resource{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return resource.Resource{}, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return resource.Resource{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
		}
		data, err := readAll(ctx, resp.Body, resp.ContentLength, progress)
		if err != nil {
			return resource.Resource{}, err
		}
		return bytesResource(data), nil
	}
}

// YAML decodes the bytes produced by inner into a map. Size and checksum
// describe the source bytes.
func YAML(inner resource.Loader) resource.Loader {
	return func(ctx context.Context, key string, progress resource.ProgressFunc) (resource.Resource, error) {
		raw, err := inner(ctx, key, progress)
		if err != nil {
			return resource.Resource{}, err
		}
		data, ok := raw.Value.([]byte)
		if !ok {
			return resource.Resource{}, fmt.Errorf("yaml loader: %s produced %T, want []byte", key, raw.Value)
		}
		var doc map[string]any
		if err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return resource.Resource{}, fmt.Errorf("yaml loader: decode %s: %w", key, err)
		}
		raw.Value = doc
		raw.Kind = resource.KindYAML
		return raw, nil
	}
}

// Checksum is the content fingerprint stored in resource.Resource.Checksum.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

func bytesResource(data []byte) resource.Resource {
	return resource.Resource{
		Value:    data,
		Size:     int64(len(data)),
		Checksum: Checksum(data),
	}
}

func readAll(ctx context.Context, r io.Reader, total int64, progress resource.ProgressFunc) ([]byte, error) {
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if n > 0 && total > 0 && progress != nil {
			progress(float64(buf.Len()) / float64(total))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if total <= 0 && progress != nil {
		progress(1)
	}
	return buf.Bytes(), nil
}
