package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/extract"
	"github.com/fieldserve/runsheet-cli/internal/merge"
	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/registry"
	"github.com/fieldserve/runsheet-cli/internal/store"
)

// pipelineEnv holds the initialized store, rule registry and merge engine
// shared by the parse/batch/compare commands.
type pipelineEnv struct {
	Store  store.Store
	Rules  *registry.Registry
	Engine *merge.Engine
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initEnv sets up the store (migrated), loads source rules, and builds a
// merge engine for the given extraction strategy. Callers should defer
// env.Close().
func initEnv(ctx context.Context, strategy model.Strategy) (*pipelineEnv, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	rules, err := loadRules(cfg.Rules)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	ex, err := extract.New(strategy, cfg.Extract)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{
		Store:  st,
		Rules:  rules,
		Engine: merge.NewEngine(ex, rules, st, cfg.Scorer),
	}, nil
}

// loadRules combines file-declared rules (evaluated first) with the
// built-in source rules.
func loadRules(rc config.RulesConfig) (*registry.Registry, error) {
	fileRules, err := registry.LoadFile(rc.Path)
	if err != nil {
		return nil, err
	}
	return registry.New(append(fileRules, registry.Builtin()...)...), nil
}
