// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns rendered documents into other formats through an
// external conversion capability: a local LibreOffice binary, a LibreOffice
// container image, or a Gotenberg service.
package convert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/docgen/internal/container"
	"github.com/pdiddy/docgen/pkg/types"
)

// Converter transforms document bytes into the format named by ext, the
// target extension including its leading dot (".pdf"). Different backends
// (soffice, container, gotenberg) implement this interface.
type Converter interface {
	Convert(ctx context.Context, src []byte, ext string) ([]byte, error)
}

// Func adapts a function to the Converter interface.
type Func func(ctx context.Context, src []byte, ext string) ([]byte, error)

// Convert calls f.
func (f Func) Convert(ctx context.Context, src []byte, ext string) ([]byte, error) {
	return f(ctx, src, ext)
}

// conversionError wraps err as a conversion failure of backend.
func conversionError(backend string, err error) error {
	return types.NewStageError(types.KindConversion, backend, err)
}

// normalizeExt returns ext without its leading dot, lower-cased.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// New builds the converter selected by cfg.Backend. Backends that probe the
// host (the container runtime) do so on first use, so a missing converter
// only fails the runs that need it.
func New(cfg types.ConversionConfig) (Converter, error) {
	var c Converter
	switch cfg.Backend {
	case types.BackendSoffice, "":
		c = Serialized(NewSofficeConverter(cfg.SofficePath))
	case types.BackendContainer:
		image := cfg.Image
		c = Lazy(func(ctx context.Context) (Converter, error) {
			rt, err := container.DetectRuntime(ctx)
			if err != nil {
				return nil, err
			}
			return NewContainerConverter(ctx, rt, image)
		})
	case types.BackendGotenberg:
		g, err := NewGotenbergConverter(cfg.GotenbergURL, nil, cfg.MaxRetries)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("unsupported conversion backend %q: use soffice, container, or gotenberg", cfg.Backend)
	}

	if cfg.Timeout > 0 {
		inner, timeout := c, cfg.Timeout
		c = Func(func(ctx context.Context, src []byte, ext string) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return inner.Convert(ctx, src, ext)
		})
	}
	return c, nil
}

// Serialized returns a Converter that runs at most one conversion at a time
// through c. Calls queue on a mutex in arrival order.
func Serialized(c Converter) Converter {
	return &serialized{inner: c}
}

type serialized struct {
	mu    sync.Mutex
	inner Converter
}

func (s *serialized) Convert(ctx context.Context, src []byte, ext string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Convert(ctx, src, ext)
}

// Lazy returns a Converter that builds its backend on first use. A build
// failure is reported as a conversion error and retried on the next call.
func Lazy(build func(ctx context.Context) (Converter, error)) Converter {
	return &lazy{build: build}
}

type lazy struct {
	mu    sync.Mutex
	build func(ctx context.Context) (Converter, error)
	conv  Converter
}

func (l *lazy) Convert(ctx context.Context, src []byte, ext string) ([]byte, error) {
	l.mu.Lock()
	if l.conv == nil {
		c, err := l.build(ctx)
		if err != nil {
			l.mu.Unlock()
			return nil, conversionError("container", err)
		}
		l.conv = c
	}
	c := l.conv
	l.mu.Unlock()
	return c.Convert(ctx, src, ext)
}
