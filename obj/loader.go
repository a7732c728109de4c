package obj

import (
	"context"
	"errors"
	"fmt"

	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/prefabs"
)

var ErrEmptyURL = errors.New("obj: empty model url")

// PrefabLoader resolves role models from prefab specs on a background
// goroutine. Every request yields exactly one result.
type PrefabLoader struct {
	// Resolve overrides how specs are fetched; nil uses prefabs.LoadModelSpec.
	Resolve func(url string) (prefabs.ModelSpec, error)
}

var _ component.Loader = (*PrefabLoader)(nil)

func (l *PrefabLoader) Load(ctx context.Context, role component.Role, url string) <-chan component.LoadResult {
	out := make(chan component.LoadResult, 1)
	go func() {
		defer close(out)
		node, err := l.load(ctx, url)
		if err != nil {
			err = fmt.Errorf("obj: load %s from %q: %w", role, url, err)
		}
		out <- component.LoadResult{Role: role, Node: node, Err: err}
	}()
	return out
}

func (l *PrefabLoader) load(ctx context.Context, url string) (component.Node, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolve := prefabs.LoadModelSpec
	if l != nil && l.Resolve != nil {
		resolve = l.Resolve
	}
	spec, err := resolve(url)
	if err != nil {
		return nil, err
	}
	node, err := Build(spec)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Build creates a node tree from a model spec.
func Build(spec prefabs.ModelSpec) (*Node, error) {
	size, err := prefabs.Vec3(spec.Size)
	if err != nil {
		return nil, fmt.Errorf("%s size: %w", spec.Name, err)
	}
	pos, err := prefabs.Vec3(spec.Position)
	if err != nil {
		return nil, fmt.Errorf("%s position: %w", spec.Name, err)
	}
	rot, err := prefabs.Vec3(spec.Rotation)
	if err != nil {
		return nil, fmt.Errorf("%s rotation: %w", spec.Name, err)
	}

	var n *Node
	if spec.Radius > 0 {
		n = NewSphere(spec.Name, spec.Radius)
	} else {
		n = NewBox(spec.Name, size)
	}
	n.position = pos
	n.rotation = rot
	for _, c := range spec.Clips {
		n.clips = append(n.clips, Clip{Name: c.Name, Duration: c.Duration, Loop: c.Loop})
	}
	for _, cs := range spec.Children {
		child, err := Build(cs)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}
