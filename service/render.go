package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dzikrimr/tugasmk/config"
)

// RendererService converts filled HTML into PDF bytes by piping it through
// the renderer binary (weasyprint reads HTML on stdin and writes the PDF to
// stdout when both arguments are "-").
type RendererService struct {
	config *config.RendererConfig
}

func NewRendererService(cfg *config.RendererConfig) *RendererService {
	return &RendererService{config: cfg}
}

// Render converts html to PDF bytes.
func (s *RendererService) Render(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("empty HTML document")
	}

	timeout := time.Duration(s.config.TimeoutSeconds) * time.Second
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, s.config.Binary, "-", "-")
	cmd.Stdin = strings.NewReader(html)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w - %s", s.config.Binary, err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output", s.config.Binary)
	}

	return stdout.Bytes(), nil
}

// EnsureBinary checks that the renderer binary is available on PATH.
func (s *RendererService) EnsureBinary() error {
	if _, err := exec.LookPath(s.config.Binary); err != nil {
		return fmt.Errorf("renderer binary not found (%s): %w", s.config.Binary, err)
	}
	return nil
}
