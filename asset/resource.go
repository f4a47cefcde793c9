package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Timeout for fetching remote resources.
const fetchTimeout = 30 * time.Second

var httpClient = &http.Client{Timeout: fetchTimeout}

// The Resource type wraps a streamable local file or remote (http/https) asset
// such as a skybox image.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Return the base name of this resource. For remote resources this is the
// last element of the URL path.
func (r *Resource) Name() string {
	name := filepath.Base(r.url.Path)
	if name == "/" || name == "." {
		return "resource"
	}
	return name
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Return a local filesystem path with the resource contents. Local resources
// return their own path while remote resources are drained into a temp file.
// The returned cleanup function must be invoked once the path is no longer
// needed.
func (r *Resource) LocalPath() (string, func(), error) {
	if !r.IsRemote() {
		return r.url.Path, func() {}, nil
	}

	f, err := os.CreateTemp("", "lumen-*-"+r.Name())
	if err != nil {
		return "", nil, fmt.Errorf("resource: could not create temp file for '%s': %w", r.Path(), err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	_, err = io.Copy(f, r)
	f.Close()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("resource: could not download '%s': %w", r.Path(), err)
	}

	return f.Name(), cleanup, nil
}

// Open a resource data stream. Paths without a scheme are treated as local
// files; http and https URLs are fetched with net/http.
//
// The caller must close the returned Resource to prevent leaks.
func NewResource(pathToResource string) (*Resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	url, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch url.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(url.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := httpClient.Get(url.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %w", url.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", url.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", url.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        url,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	url, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        url,
	}
}
