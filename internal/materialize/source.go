package materialize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conn-castle/globalenv/internal/config"
	"github.com/conn-castle/globalenv/internal/messages"
)

// ErrNotFound reports a channel file that does not exist.
var ErrNotFound = errors.New("channel file not found")

const userAgent = "genv"

// Source opens channel files from local directories or over HTTP.
type Source struct {
	Client *http.Client
}

// NewSource returns a Source with a bounded HTTP timeout.
func NewSource() Source {
	return Source{Client: &http.Client{Timeout: 5 * time.Minute}}
}

// Location joins path parts onto a channel location.
func (s Source) Location(channel config.Channel, parts ...string) string {
	if channel.IsLocal() {
		return filepath.Join(append([]string{channel.Location}, parts...)...)
	}
	return strings.TrimRight(channel.Location, "/") + "/" + strings.Join(parts, "/")
}

// Open opens location, which is either a local path or an http(s) URL.
// Missing files yield ErrNotFound.
func (s Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf(messages.MaterializeNotFoundFmt, ErrNotFound, location)
			}
			return nil, fmt.Errorf(messages.MaterializeOpenFmt, location, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf(messages.MaterializeCreateRequestFmt, location, err)
	}
	req.Header.Set("User-Agent", userAgent)
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(messages.MaterializeOpenFmt, location, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, fmt.Errorf(messages.MaterializeNotFoundFmt, ErrNotFound, location)
	}
	if resp.StatusCode != http.StatusOK {
		status := resp.Status
		_ = resp.Body.Close()
		return nil, fmt.Errorf(messages.MaterializeStatusFmt, location, status)
	}
	return resp.Body, nil
}
