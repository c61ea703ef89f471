// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"context"
	"fmt"
	"io"
)

// Tool runs one command-line program with the given arguments, piping
// stdin and stdout.
type Tool interface {
	// Name describes where the tool runs, e.g. "pdftoppm" or
	// "docker:minidocks/poppler:latest".
	Name() string

	Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error
}

// LocalTool runs a binary found on PATH.
type LocalTool struct {
	bin  string
	exec executor
}

func (l *LocalTool) Name() string { return l.bin }

func (l *LocalTool) Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if err := l.exec.RunPiped(ctx, l.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s: %w", l.bin, err)
	}
	return nil
}

// ContainerTool runs a binary inside a container image.
type ContainerTool struct {
	bin     string
	image   string
	runtime Runtime
}

func (c *ContainerTool) Name() string { return c.runtime.Name() + ":" + c.image }

func (c *ContainerTool) Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	full := make([]string, 0, len(args)+1)
	full = append(full, c.bin)
	full = append(full, args...)
	return c.runtime.Run(ctx, c.image, full, stdin, stdout)
}

// DetectTool returns a LocalTool when bin is on PATH. Otherwise it looks
// for a container runtime that has image available and runs bin there.
func DetectTool(bin, image string) (Tool, error) {
	return detectTool(defaultExec, bin, image)
}

func detectTool(exec executor, bin, image string) (Tool, error) {
	if _, err := exec.LookPath(bin); err == nil {
		return &LocalTool{bin: bin, exec: exec}, nil
	}

	rt, err := detectRuntime(exec)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH and %w", bin, err)
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", bin, err)
	}
	return &ContainerTool{bin: bin, image: image, runtime: rt}, nil
}
