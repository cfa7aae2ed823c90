package widget

import (
	"context"
	"fmt"
)

// MaxViewDepth bounds how many views may be under construction at once along
// one chain of nested references.
const MaxViewDepth = 128

type buildingKey struct{}

// building is the chain of models whose views are being rendered, innermost
// first.
type building struct {
	modelID string
	depth   int
	parent  *building
}

// EnterView records that a view of modelID is being built and returns the
// context to render it with. It fails when modelID is already being built
// further up the chain, or when the chain exceeds MaxViewDepth.
func EnterView(ctx context.Context, modelID string) (context.Context, error) {
	parent, _ := ctx.Value(buildingKey{}).(*building)
	for b := parent; b != nil; b = b.parent {
		if b.modelID == modelID {
			return ctx, fmt.Errorf("%w: model %s contains itself", ErrCyclicReference, modelID)
		}
	}
	depth := 1
	if parent != nil {
		depth = parent.depth + 1
	}
	if depth > MaxViewDepth {
		return ctx, fmt.Errorf("%w: model %s at depth %d", ErrViewTooDeep, modelID, depth)
	}
	return context.WithValue(ctx, buildingKey{}, &building{modelID: modelID, depth: depth, parent: parent}), nil
}
