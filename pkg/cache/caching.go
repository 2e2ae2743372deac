package cache

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/orneryd/culaunch/pkg/nvcc"
)

// CachingCompiler wraps an inner nvcc.Compiler with a memory layer and an
// optional disk layer. Lookup order is memory, disk, inner compiler; every
// compile result is written back through both layers.
//
// Keys cover the source bytes, so an edited kernel always recompiles. This
// keeps the pipeline's state machine honest: re-editing the source restarts
// from Source even with caching in front.
type CachingCompiler struct {
	inner nvcc.Compiler
	mem   *ArtifactCache
	disk  *DiskCache // may be nil
}

// NewCachingCompiler composes the cache layers in front of inner. disk may
// be nil for memory-only caching.
func NewCachingCompiler(inner nvcc.Compiler, mem *ArtifactCache, disk *DiskCache) *CachingCompiler {
	return &CachingCompiler{inner: inner, mem: mem, disk: disk}
}

// Compile satisfies nvcc.Compiler.
func (c *CachingCompiler) Compile(ctx context.Context, srcPath, arch string) (*nvcc.Artifact, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: read source %s", srcPath)
	}
	key := Key(arch, src)

	if art, ok := c.mem.Get(key); ok {
		return art, nil
	}
	if c.disk != nil {
		art, ok, err := c.disk.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			c.mem.Put(key, art)
			return art, nil
		}
	}

	art, err := c.inner.Compile(ctx, srcPath, arch)
	if err != nil {
		return nil, err
	}
	c.mem.Put(key, art)
	if c.disk != nil {
		if err := c.disk.Put(key, art); err != nil {
			return nil, err
		}
	}
	return art, nil
}
