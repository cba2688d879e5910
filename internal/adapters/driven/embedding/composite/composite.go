// Package composite selects the best available embedder at construction
// time: a remote embedder when it answers a probe, the local hashed embedder
// otherwise. Selection happens once so a flaky remote cannot mix vector
// spaces within one index.
package composite

import (
	"context"
	"time"

	"github.com/forgefit-labs/discovery/internal/adapters/driven/embedding/hashed"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// probeTimeout bounds the reachability check.
const probeTimeout = 5 * time.Second

// Select returns remote when it is non-nil and reachable, otherwise a local
// hashed embedder. The returned embedder is fixed for its lifetime.
func Select(ctx context.Context, remote driven.Embedder) driven.Embedder {
	if remote != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := remote.Ping(probeCtx)
		cancel()

		if err == nil {
			logger.Debug("Using remote embedder %s", remote.ModelName())
			return remote
		}
		logger.Warn("Remote embedder unreachable, using local hashing: %v", err)
	}
	return hashed.New(hashed.Config{})
}
