// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/docgen/internal/container"
)

// ContainerConverter converts documents by piping them through a LibreOffice
// container image. The image reads the source document on stdin, takes the
// target format as its only argument, and writes the result on stdout. It
// depends on a container.Runtime (docker or podman) injected at
// construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter creates a converter that uses the given container
// runtime to run image. It verifies that the image exists locally before
// returning.
func NewContainerConverter(ctx context.Context, rt container.Runtime, image string) (*ContainerConverter, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("conversion image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

// Convert pipes src through the container and returns the converted bytes.
func (c *ContainerConverter) Convert(ctx context.Context, src []byte, ext string) ([]byte, error) {
	format := normalizeExt(ext)

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, []string{format}, bytes.NewReader(src), &out); err != nil {
		return nil, conversionError("container", fmt.Errorf("converting to %s with %s: %w", format, c.image, err))
	}

	if out.Len() == 0 {
		return nil, conversionError("container", fmt.Errorf("%s produced empty output", c.image))
	}

	return out.Bytes(), nil
}
