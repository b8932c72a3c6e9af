package assemble

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// fetch retrieves a resource as an opaque byte stream. Any non-success
// status is an error; there are no retries.
func (p *Pipeline) fetch(url string) ([]byte, error) {
	resp, err := p.Client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

// fetchText retrieves a text resource. The wire bytes are decoded with
// the configured charset regardless of what the server declares, since
// the servers omit or mis-declare the encoding, and carriage returns
// are stripped.
func (p *Pipeline) fetchText(url string) (string, error) {
	data, err := p.fetch(url)
	if err != nil {
		return "", err
	}

	decoded, err := p.encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return strings.ReplaceAll(string(decoded), "\r", ""), nil
}
