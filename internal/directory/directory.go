// Package directory resolves the institution directory the login picker is
// populated from. In the legacy local-auth variant the same document also
// carries the ID→password map.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// Options configures directory loading. URL takes precedence over Path.
type Options struct {
	URL        string
	Path       string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Directory is the immutable institution set loaded once at startup.
type Directory struct {
	institutions []domain.Institution
	byID         map[string]domain.Institution
}

type document struct {
	Institutions []struct {
		ID       string `json:"ID"`
		Name     string `json:"Name"`
		Password string `json:"Password"`
	} `json:"institutions"`
}

// Load fetches and parses the directory document. An unreachable or
// malformed document degrades to an empty directory with a logged error, not
// a failure: the dashboard still starts with nothing to pick from.
func Load(ctx context.Context, opts Options) *Directory {
	logger := opts.Logger
	if logger == nil {
		l := infra.DiscardLogger()
		logger = &l
	}
	raw, err := fetch(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Msg("directory: failed to load, continuing with empty institution list")
		return empty()
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Error().Err(err).Msg("directory: malformed document, continuing with empty institution list")
		return empty()
	}
	institutions := make([]domain.Institution, 0, len(doc.Institutions))
	byID := make(map[string]domain.Institution, len(doc.Institutions))
	for _, entry := range doc.Institutions {
		inst := domain.Institution{ID: entry.ID, Name: entry.Name, Password: entry.Password}
		institutions = append(institutions, inst)
		byID[inst.ID] = inst
	}
	logger.Info().Int("institutions", len(institutions)).Msg("directory: loaded")
	return &Directory{institutions: institutions, byID: byID}
}

// FromInstitutions builds a directory from an already-fetched institution
// set, e.g. the record service's getInstitutions response.
func FromInstitutions(institutions []domain.Institution) *Directory {
	byID := make(map[string]domain.Institution, len(institutions))
	for _, inst := range institutions {
		byID[inst.ID] = inst
	}
	cloned := make([]domain.Institution, len(institutions))
	copy(cloned, institutions)
	return &Directory{institutions: cloned, byID: byID}
}

// Institutions returns the full ordered institution list.
func (d *Directory) Institutions() []domain.Institution {
	out := make([]domain.Institution, len(d.institutions))
	copy(out, d.institutions)
	return out
}

// Lookup returns the institution for the given ID.
func (d *Directory) Lookup(id string) (domain.Institution, bool) {
	inst, ok := d.byID[id]
	return inst, ok
}

// DisplayName resolves the display name for an institution ID, falling back
// to the ID itself when the directory has no entry.
func (d *Directory) DisplayName(id string) string {
	if inst, ok := d.byID[id]; ok && inst.Name != "" {
		return inst.Name
	}
	return id
}

func empty() *Directory {
	return &Directory{byID: map[string]domain.Institution{}}
}

func fetch(ctx context.Context, opts Options) ([]byte, error) {
	if u := strings.TrimSpace(opts.URL); u != "" {
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 15 * time.Second}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("directory: build request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("directory: fetch %s: %w", u, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("directory: fetch %s: status %d", u, resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("directory: read response: %w", err)
		}
		return raw, nil
	}
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("directory: no source configured")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}
	return raw, nil
}
