package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shiftforge/roster/internal/model"
)

func readContext(path string) (model.SolveContext, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("rosterctl: open context %s: %w", path, err)
	}
	defer f.Close()

	var ctx model.SolveContext
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ctx); err != nil {
		return model.SolveContext{}, fmt.Errorf("rosterctl: decode context %s: %w", path, err)
	}
	return ctx, nil
}

func readBundle(path string) (model.SolutionBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.SolutionBundle{}, fmt.Errorf("rosterctl: open bundle %s: %w", path, err)
	}
	defer f.Close()

	var b model.SolutionBundle
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return model.SolutionBundle{}, fmt.Errorf("rosterctl: decode bundle %s: %w", path, err)
	}
	return b, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("rosterctl: create %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
