package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/incr/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the logger Graft node.
	NodeID graft.ID = "adapter.logger"
	// FormatEnvVar selects the log format. "json" enables JSON logs.
	FormatEnvVar = "INCR_LOG_FORMAT"
)

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			l := New()
			l.SetJSON(os.Getenv(FormatEnvVar) == "json")
			return l, nil
		},
	})
}
