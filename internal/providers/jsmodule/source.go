package jsmodule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/domain/loader"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/resilience"
)

// Source fetches module code by npm name and version range.
type Source interface {
	Fetch(ctx context.Context, name, version string) (*Script, error)
}

// FileSource serves modules from npm-style package directories under a root.
type FileSource struct {
	root string
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{root: dir}
}

// Fetch finds a package.json whose name matches and whose version is within
// the requested major, then reads its main entry (index.js by default).
func (s *FileSource) Fetch(ctx context.Context, name, version string) (*Script, error) {
	manifests, err := doublestar.Glob(os.DirFS(s.root), "**/package.json")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.root, err)
	}
	sort.Strings(manifests)

	for _, rel := range manifests {
		manifest := filepath.Join(s.root, filepath.FromSlash(rel))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(manifest)
		if err != nil {
			continue
		}
		var pkg packageJSON
		if err := sonic.Unmarshal(data, &pkg); err != nil || pkg.Name != name {
			continue
		}
		if loader.VersionGap(version, pkg.Version) {
			continue
		}

		main := pkg.Main
		if main == "" {
			main = "index.js"
		}
		entry := filepath.Join(filepath.Dir(manifest), filepath.FromSlash(main))
		code, err := os.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("read %s entry: %w", name, err)
		}
		return &Script{Name: name, Version: pkg.Version, Origin: entry, Code: string(code)}, nil
	}
	return nil, fmt.Errorf("%w: %s@%s under %s", ErrNotFound, name, version, s.root)
}

// MaxModuleBytes bounds the size of a module bundle fetched from a CDN.
const MaxModuleBytes = 10 << 20

// CDNSource fetches module bundles over HTTP from an npm CDN such as
// jsDelivr, as {base}{name}@{version}.
type CDNSource struct {
	client  *resty.Client
	baseURL string
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewCDNSource creates a CDN source. rps <= 0 disables rate limiting.
func NewCDNSource(baseURL string, timeout time.Duration, rps float64) *CDNSource {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", "htmlmanager/1.0").
		SetResponseBodyLimit(MaxModuleBytes).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if errors.Is(err, resty.ErrResponseBodyTooLarge) {
				return false
			}
			return err != nil || r.StatusCode() >= 500
		})
	client.SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &CDNSource{client: client, baseURL: baseURL, limiter: limiter}
}

// WithBodyLimit replaces MaxModuleBytes as the largest accepted bundle.
func (s *CDNSource) WithBodyLimit(n int) *CDNSource {
	s.client.SetResponseBodyLimit(n)
	return s
}

// WithBreaker guards fetches with a circuit breaker. Missing packages and
// cancelled requests do not count as upstream failures unless
// settings.IsFailure says otherwise.
func (s *CDNSource) WithBreaker(settings resilience.Settings) *CDNSource {
	if settings.IsFailure == nil {
		settings.IsFailure = func(err error) bool {
			return !errors.Is(err, ErrNotFound) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}
	}
	s.breaker = resilience.New("cdn", settings)
	return s
}

func (s *CDNSource) Fetch(ctx context.Context, name, version string) (*Script, error) {
	if s.breaker == nil {
		return s.fetch(ctx, name, version)
	}
	var script *Script
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		script, err = s.fetch(ctx, name, version)
		return err
	})
	return script, err
}

func (s *CDNSource) fetch(ctx context.Context, name, version string) (*Script, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v := strings.TrimSpace(version)
	if v == "" || v == "*" {
		v = "latest"
	}
	url := s.baseURL + name + "@" + v

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return nil, fmt.Errorf("%w: %s", ErrModuleTooLarge, url)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}
	return &Script{Name: name, Version: version, Origin: url, Code: resp.String()}, nil
}

// MultiSource tries each source in order. Sources reporting ErrNotFound are
// skipped silently; other failures are collected and returned if no source
// succeeds.
type MultiSource []Source

func (m MultiSource) Fetch(ctx context.Context, name, version string) (*Script, error) {
	var errs []error
	for _, src := range m {
		script, err := src.Fetch(ctx, name, version)
		if err == nil {
			return script, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, name, version)
	}
	return nil, errors.Join(errs...)
}
