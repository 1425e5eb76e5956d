package hinge

import (
	"github.com/akmonengine/hinge/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// island is a group of constraints sharing dynamic bodies, directly or not.
// Two islands never touch the same dynamic body, so they can be solved concurrently.
type island struct {
	constraints []*constraintEntry
	bodies      []*actor.RigidBody // dynamic bodies, in order of appearance
}

// buildIslands groups the constraints with a union-find over their dynamic bodies.
// Static and Kinematic bodies never link islands: constraints cannot move them.
// Islands are ordered by their first constraint, and keep the constraints order.
func buildIslands(entries []*constraintEntry) []*island {
	parent := make(map[*actor.RigidBody]*actor.RigidBody)

	var find func(body *actor.RigidBody) *actor.RigidBody
	find = func(body *actor.RigidBody) *actor.RigidBody {
		root, ok := parent[body]
		if !ok {
			parent[body] = body
			return body
		}
		if root != body {
			root = find(root)
			parent[body] = root
		}
		return root
	}

	union := func(a, b *actor.RigidBody) {
		rootA, rootB := find(a), find(b)
		if rootA != rootB {
			parent[rootB] = rootA
		}
	}

	for _, entry := range entries {
		switch {
		case entry.a.IsDynamic() && entry.b.IsDynamic():
			union(entry.a, entry.b)
		case entry.a.IsDynamic():
			find(entry.a)
		case entry.b.IsDynamic():
			find(entry.b)
		}
	}

	var islands []*island
	byRoot := make(map[*actor.RigidBody]*island)
	seen := make(map[*actor.RigidBody]bool)

	for _, entry := range entries {
		var root *actor.RigidBody
		switch {
		case entry.a.IsDynamic():
			root = find(entry.a)
		case entry.b.IsDynamic():
			root = find(entry.b)
		default:
			// nothing to move, kept for the velocity pass
			islands = append(islands, &island{constraints: []*constraintEntry{entry}})
			continue
		}

		current, ok := byRoot[root]
		if !ok {
			current = &island{}
			byRoot[root] = current
			islands = append(islands, current)
		}
		current.constraints = append(current.constraints, entry)
		for _, body := range []*actor.RigidBody{entry.a, entry.b} {
			if body.IsDynamic() && !seen[body] {
				seen[body] = true
				current.bodies = append(current.bodies, body)
			}
		}
	}

	return islands
}

// awake reports whether the island has to be simulated this tick: one of its
// bodies is awake, or a moving kinematic body drives it.
func (i *island) awake() bool {
	for _, body := range i.bodies {
		if !body.IsSleeping {
			return true
		}
	}
	for _, entry := range i.constraints {
		if drives(entry.a) || drives(entry.b) {
			return true
		}
	}
	return len(i.bodies) == 0
}

func (i *island) wake() {
	for _, body := range i.bodies {
		body.Awake()
	}
}

// drives reports whether a kinematic body is moving
func drives(body *actor.RigidBody) bool {
	return body.BodyType == actor.BodyTypeKinematic &&
		(body.Velocity != (mgl64.Vec3{}) || body.AngularVelocity != (mgl64.Vec3{}))
}
