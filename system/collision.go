package system

import "github.com/milk9111/dunk/component"

// GoalContact checks the ball's bounding sphere against the goal collider's
// box. Either side missing yields ContactNotReady.
func GoalContact(ball, collider component.Node) component.Contact {
	if ball == nil || collider == nil {
		return component.ContactNotReady
	}
	if ball.BoundingSphere().IntersectsBox(collider.BoundingBox()) {
		return component.ContactHit
	}
	return component.ContactMiss
}

// OutOfBounds reports whether the character's box has dropped below the floor.
func OutOfBounds(character component.Node, floorY float64) bool {
	if character == nil {
		return false
	}
	return character.BoundingBox().Min().Y() < floorY
}
