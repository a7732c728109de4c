package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/milk9111/dunk/component"
	"github.com/milk9111/dunk/prefabs"
	"github.com/rs/zerolog"
)

var (
	ErrAssetLoad = errors.New("system: asset load failed")
	ErrNotBound  = errors.New("system: required role not bound")
)

// Bindings maps each role to its scene node. Hand and GoalCollider are
// attachments found inside the character and basket and may be nil.
type Bindings struct {
	Character component.Node
	Ball      component.Node
	Basket    component.Node
	Stadium   component.Node

	Hand         component.Node
	GoalCollider component.Node
}

// Role returns the node bound to role.
func (b *Bindings) Role(role component.Role) component.Node {
	if b == nil {
		return nil
	}
	switch role {
	case component.RoleCharacter:
		return b.Character
	case component.RoleBall:
		return b.Ball
	case component.RoleBasket:
		return b.Basket
	case component.RoleStadium:
		return b.Stadium
	}
	return nil
}

func (b *Bindings) set(role component.Role, n component.Node) {
	switch role {
	case component.RoleCharacter:
		b.Character = n
	case component.RoleBall:
		b.Ball = n
	case component.RoleBasket:
		b.Basket = n
	case component.RoleStadium:
		b.Stadium = n
	}
}

// Validate checks that every required role has a node.
func (b *Bindings) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: no bindings", ErrNotBound)
	}
	for _, role := range component.Roles {
		if role.Required() && b.Role(role) == nil {
			return fmt.Errorf("%w: %s", ErrNotBound, role)
		}
	}
	return nil
}

// Attach resolves the hand bone and goal collider by name. Missing
// attachments stay nil and are reported when the session first needs them.
func (b *Bindings) Attach(handBone, goalCollider string) {
	b.Hand = child(b.Character, handBone)
	b.GoalCollider = child(b.Basket, goalCollider)
}

func child(n component.Node, name string) component.Node {
	if n == nil || name == "" {
		return nil
	}
	c, ok := n.Child(name)
	if !ok {
		return nil
	}
	return c
}

// Bind requests every model in the manifest and waits for all of them. Any
// required role that fails to load fails the whole bind.
func Bind(ctx context.Context, loader component.Loader, m prefabs.Manifest, logger zerolog.Logger) (*Bindings, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: nil loader", ErrAssetLoad)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}

	pending := make(map[component.Role]<-chan component.LoadResult, len(component.Roles))
	for _, role := range component.Roles {
		url, ok := m.URL(role)
		if !ok {
			continue
		}
		pending[role] = loader.Load(ctx, role, url)
	}

	b := &Bindings{}
	var errs []error
	for _, role := range component.Roles {
		ch, ok := pending[role]
		if !ok {
			continue
		}
		err := b.await(ctx, role, ch)
		if err == nil {
			continue
		}
		if !role.Required() {
			logger.Warn().Err(err).Str("role", role.String()).Msg("optional model not loaded")
			continue
		}
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrAssetLoad, errors.Join(errs...))
		logger.Error().Err(err).Msg("bind failed")
		return nil, err
	}

	b.Attach(m.HandBone, m.GoalCollider)
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	logger.Debug().
		Bool("hand", b.Hand != nil).
		Bool("goal_collider", b.GoalCollider != nil).
		Bool("stadium", b.Stadium != nil).
		Msg("roles bound")
	return b, nil
}

func (b *Bindings) await(ctx context.Context, role component.Role, ch <-chan component.LoadResult) error {
	select {
	case res, ok := <-ch:
		switch {
		case !ok:
			return fmt.Errorf("%s: loader closed without a result", role)
		case res.Err != nil:
			return res.Err
		case res.Node == nil:
			return fmt.Errorf("%s: loader returned no node", role)
		}
		b.set(role, res.Node)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", role, ctx.Err())
	}
}
