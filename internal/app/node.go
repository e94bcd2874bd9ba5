package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/incr/internal/adapters/cas"    //nolint:depguard // Wired in app layer
	"go.trai.ch/incr/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/incr/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/incr/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/incr/internal/adapters/shell"  //nolint:depguard // Wired in app layer
	"go.trai.ch/incr/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			cas.NodeID,
			fs.SnapshotterNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.ExecutionHistoryStore](ctx)
	if err != nil {
		return nil, err
	}

	snapshotter, err := graft.Dep[ports.Snapshotter](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, log, store, snapshotter), nil
}
