package abi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/wippyai/abi-bindgen/errors"
)

// Parse decodes a JSON ABI description. Unknown members are ignored so newer
// descriptions keep working.
func Parse(data []byte) (*Description, error) {
	var d Description
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.ParseFailed("ABI description", err)
	}
	return &d, nil
}

// Decode reads and decodes a JSON ABI description from r.
func Decode(r io.Reader) (*Description, error) {
	var d Description
	if err := json.UnmarshalRead(r, &d); err != nil {
		return nil, errors.ParseFailed("ABI description", err)
	}
	return &d, nil
}

// Load reads a description from a file path or an http(s) URL.
func Load(ctx context.Context, location string) (*Description, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return fetch(ctx, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Detail("open ABI description %s", location).
			Cause(err).
			Build()
	}
	defer f.Close()

	return Decode(f)
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func fetch(ctx context.Context, url string) (*Description, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "build request")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Detail("fetch ABI description %s", url).
			Cause(err).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Detail("fetch ABI description %s", url).
			Cause(fmt.Errorf("unexpected status %s", resp.Status)).
			Build()
	}
	return Decode(resp.Body)
}
