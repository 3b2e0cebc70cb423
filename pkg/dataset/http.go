package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/errors"
)

// maxResourceSize bounds a single fetched resource.
const maxResourceSize = 32 << 20

// HTTPSource fetches resources from a static file server, e.g. the /data
// directory of a deployed site.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource validates baseURL and returns an HTTPSource.
func NewHTTPSource(baseURL string) (*HTTPSource, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *HTTPSource) Name() string { return "http" }

// Fetch GETs BaseURL/name, retrying transport errors and 5xx responses.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateResourceName(name); err != nil {
		return nil, err
	}
	url := s.BaseURL + "/" + name

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.get(ctx, url)
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", name)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", name)
	}
	return data, nil
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeDatasetNotFound, "dataset not found at %s", url)
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
