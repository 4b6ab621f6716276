package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ScalePlaceholder in CommandCapturer.Args is replaced with the scale factor.
const ScalePlaceholder = "{scale}"

// CommandCapturer pipes the document to an external renderer on stdin and
// reads the PNG from stdout, e.g.
//
//	CommandCapturer{Path: "wkhtmltoimage", Args: []string{"--zoom", "{scale}", "-", "-"}}
type CommandCapturer struct {
	Path string
	Args []string
}

var _ Capturer = CommandCapturer{}

func (c CommandCapturer) Capture(ctx context.Context, document []byte, scale int) ([]byte, error) {
	if strings.TrimSpace(c.Path) == "" {
		return nil, errors.New("export: renderer command is required")
	}
	args := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		args = append(args, strings.ReplaceAll(arg, ScalePlaceholder, strconv.Itoa(scale)))
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdin = bytes.NewReader(document)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.Path, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	return stdout.Bytes(), nil
}
