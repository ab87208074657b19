package flux

import "github.com/wovengraph/flux/internal"

type effectConfig struct {
	id string
}

// EffectOption configures Effect.
type EffectOption func(*effectConfig)

// WithEffectID gives the effect a stable label for diagnostics and cyclic
// dependency error trails.
func WithEffectID(id string) EffectOption {
	return func(c *effectConfig) { c.id = id }
}

// Effect runs body once immediately, then again every time one of the
// reactive values it read changes. body may return a cleanup function; it
// runs right before the next re-run and once more when the effect is
// disposed, via the same disposal bucket a scope's own onDispose callbacks
// use, so a nested effect's cleanup fires exactly when its parent's
// disposal cascade reaches it. The returned stop function disposes the
// effect's own node - always a deep disposal, never a suspend.
func Effect(body func() func(), opts ...EffectOption) (stop func()) {
	cfg := effectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := internal.GetRuntime()
	scope := rt.Tracker.CurrentScope()

	node := rt.NewDerivationNode(scope, func(n *internal.Node) any {
		if cleanup := body(); cleanup != nil {
			n.AddDisposal(cleanup)
		}
		return nil
	}, func(any, any) bool { return true }, true)
	node.SetLabel(cfg.id)

	node.ReadDerivation()

	return node.Dispose
}
