package host

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/abi-bindgen/errors"
)

// Fetcher retrieves the full content of a remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, remote string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, remote string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, remote string) ([]byte, error) {
	return f(ctx, remote)
}

// HTTPFetcher fetches resources over HTTP. Relative paths are resolved
// against BaseURL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with a 30 second client timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements Fetcher.
func (h *HTTPFetcher) Fetch(ctx context.Context, remote string) ([]byte, error) {
	target, err := h.resolve(remote)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (h *HTTPFetcher) resolve(remote string) (string, error) {
	ref, err := url.Parse(remote)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || h.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(h.BaseURL)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery}).String(), nil
}

// VFS is the filesystem the native library reads from.
type VFS interface {
	MkdirAll(dir string) error
	WriteFile(name string, data []byte) error
}

// DirFS is a VFS rooted in a host directory. Mount it into the module with
// FSConfig so staged files are visible to the library.
type DirFS struct {
	Root string
}

// FSConfig mounts Root at "/" inside the module.
func (d DirFS) FSConfig() wazero.FSConfig {
	return wazero.NewFSConfig().WithDirMount(d.Root, "/")
}

// hostPath maps a slash-separated module path into Root. Paths cannot
// escape Root.
func (d DirFS) hostPath(name string) string {
	clean := path.Clean("/" + name)
	return filepath.Join(d.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
}

// MkdirAll implements VFS.
func (d DirFS) MkdirAll(dir string) error {
	return os.MkdirAll(d.hostPath(dir), 0o755)
}

// WriteFile implements VFS.
func (d DirFS) WriteFile(name string, data []byte) error {
	return os.WriteFile(d.hostPath(name), data, 0o644)
}

// Preloader stages remote files into the VFS before a native call reads
// them. Every call fetches; nothing is cached.
type Preloader struct {
	fetcher Fetcher
	vfs     VFS
}

// NewPreloader creates a Preloader.
func NewPreloader(f Fetcher, vfs VFS) *Preloader {
	return &Preloader{fetcher: f, vfs: vfs}
}

// Preload creates the ancestor directories of target, fetches remote and
// writes its bytes to target. An empty target means remote.
func (p *Preloader) Preload(ctx context.Context, remote, target string) error {
	if target == "" {
		target = remote
	}
	log := Logger().With(zap.String("remote", remote), zap.String("target", target))

	if dir := path.Dir(path.Clean("/" + target)); dir != "/" {
		if err := p.vfs.MkdirAll(dir); err != nil {
			return errors.New(errors.PhasePreload, errors.KindFilesystem).
				Path(target).
				Detail("create %s", dir).
				Cause(err).
				Build()
		}
	}

	data, err := p.fetcher.Fetch(ctx, remote)
	if err != nil {
		return errors.New(errors.PhasePreload, errors.KindFetch).
			Path(remote).
			Detail("fetch %s", remote).
			Cause(err).
			Build()
	}

	if err := p.vfs.WriteFile(target, data); err != nil {
		return errors.New(errors.PhasePreload, errors.KindFilesystem).
			Path(target).
			Detail("write %s", target).
			Cause(err).
			Build()
	}
	log.Debug("preloaded", zap.Int("bytes", len(data)))
	return nil
}

type callOptions struct {
	skipPreload bool
}

// CallOption adjusts a single generated call.
type CallOption func(*callOptions)

// SkipPreload bypasses file staging, for files already present in the VFS.
func SkipPreload() CallOption {
	return func(o *callOptions) { o.skipPreload = true }
}

// Preload stages each path in order before a native call. It stops at the
// first failure. Without a preloader, or with SkipPreload, it does nothing.
func (r *Runtime) Preload(ctx context.Context, opts []CallOption, paths ...string) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.skipPreload || r.preloader == nil {
		return nil
	}
	for _, p := range paths {
		if err := r.preloader.Preload(ctx, p, ""); err != nil {
			return err
		}
	}
	return nil
}

// Stage fetches remote into target. It is the explicit form of preloading.
func (r *Runtime) Stage(ctx context.Context, remote, target string) error {
	if r.preloader == nil {
		return errors.NotInitialized(errors.PhasePreload, "preloader")
	}
	return r.preloader.Preload(ctx, remote, target)
}
