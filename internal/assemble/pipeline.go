// Package assemble retrieves the ordered page resources of a document,
// attaches text layers and drives the external DjVu tools that produce
// the final merged file.
package assemble

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding"

	"djvuget/internal/config"
	"djvuget/internal/mets"
)

// Pipeline downloads page resources into a scratch directory and merges
// them into one output document. Pages are processed strictly in input
// order with a politeness delay between fetches; nothing is retried.
type Pipeline struct {
	Client     *http.Client
	ScratchDir string

	// RunTool invokes an external tool and returns an error on nonzero
	// exit. Overridable so tests can observe invocations.
	RunTool func(name string, args ...string) error

	mergeTool string
	textTool  string
	delay     time.Duration
	encoding  encoding.Encoding
}

// New builds a pipeline from a validated configuration.
func New(cfg *config.Config, scratchDir string) *Pipeline {
	return &Pipeline{
		Client:     http.DefaultClient,
		ScratchDir: scratchDir,
		RunTool:    runCommand,
		mergeTool:  cfg.MergeTool,
		textTool:   cfg.TextTool,
		delay:      cfg.Delay(),
		encoding:   cfg.Encoding(),
	}
}

// Assemble fetches every page in order and merges the result into
// outPath. Page files are written to the scratch directory under a
// 1-based zero-padded counter; the merge receives the explicit file
// list, so the padding width never affects page order.
func (p *Pipeline) Assemble(pages []mets.PageEntry, outPath string) error {
	files := make([]string, 0, len(pages))
	for i, page := range pages {
		if i > 0 && p.delay > 0 {
			time.Sleep(p.delay)
		}

		pageNum := i + 1
		pageFile := filepath.Join(p.ScratchDir, fmt.Sprintf("page-%04d.djvu", pageNum))

		data, err := p.fetch(page.ImageURL)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageNum, err)
		}
		if err := os.WriteFile(pageFile, data, 0o644); err != nil {
			return fmt.Errorf("page %d: %w", pageNum, err)
		}

		if page.TextURL != "" {
			text, err := p.fetchText(page.TextURL)
			if err != nil {
				return fmt.Errorf("page %d text: %w", pageNum, err)
			}
			if err := p.setTextLayer(pageFile, data, text); err != nil {
				return fmt.Errorf("page %d: failed to create text layer: %w", pageNum, err)
			}
		}

		files = append(files, pageFile)
	}

	args := append([]string{"-c", outPath}, files...)
	if err := p.RunTool(p.mergeTool, args...); err != nil {
		return fmt.Errorf("failed to merge pages into %s: %w", outPath, err)
	}
	return nil
}

// setTextLayer attaches text as the full-page text layer of pageFile.
// The bounding box comes from the page's own dimensions.
func (p *Pipeline) setTextLayer(pageFile string, pageData []byte, text string) error {
	w, h, err := pageSize(pageData)
	if err != nil {
		return err
	}
	script := textLayerScript(w, h, text)
	return p.RunTool(p.textTool, "-s", "-e", script, pageFile)
}

// runCommand is the default RunTool: tool diagnostics go to stderr so
// stdout stays reserved for the description output.
func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
