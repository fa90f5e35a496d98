package actions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// scriptFileMode marks the fetched fallback script executable.
const scriptFileMode os.FileMode = 0o755

// fetchFallbackScript downloads the fallback script into a fresh temporary
// directory and returns its path plus a cleanup function. The script is
// fetched on every delegation, never cached: the fleet side may change it at
// any time and the router must run what is currently published.
func fetchFallbackScript(ctx context.Context, scriptURL string) (string, func(), error) {
	parsed, err := url.Parse(scriptURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse fallback URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scriptURL, http.NoBody)
	if err != nil {
		return "", nil, fmt.Errorf("build fallback request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch fallback script: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch fallback script: %s", resp.Status)
	}

	dir, err := os.MkdirTemp("", "routerdesk-delegate-")
	if err != nil {
		return "", nil, fmt.Errorf("create script dir: %w", err)
	}

	cleanup := func() {
		_ = os.RemoveAll(dir)
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		name = "fallback.sh"
	}

	scriptPath := filepath.Join(dir, name)

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		cleanup()

		return "", nil, fmt.Errorf("read fallback script: %w", err)
	}

	if err := os.WriteFile(scriptPath, contents, scriptFileMode); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("write fallback script: %w", err)
	}

	return scriptPath, cleanup, nil
}
