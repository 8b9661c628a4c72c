package restler

import (
	"fmt"
	"os"

	"github.com/valyala/fastjson"
)

// MergedSettings is the base name of the settings file written by MergeSettings.
const MergedSettings = "merged_settings"

// MergeSettings overrides the top level keys of the engine settings with the custom ones
// and writes the result to out. Nested objects are replaced, not merged.
func MergeSettings(enginePath, customPath, out string) error {
	engine, err := os.ReadFile(enginePath)
	if err != nil {
		return err
	}
	custom, err := os.ReadFile(customPath)
	if err != nil {
		return err
	}

	merged, err := mergeSettings(engine, custom)
	if err != nil {
		return fmt.Errorf("merge %s into %s: %w", customPath, enginePath, err)
	}
	return os.WriteFile(out, merged, 0o644)
}

func mergeSettings(engine, custom []byte) ([]byte, error) {
	var ep, cp fastjson.Parser

	ev, err := ep.ParseBytes(engine)
	if err != nil {
		return nil, fmt.Errorf("engine settings: %w", err)
	}
	eo, err := ev.Object()
	if err != nil {
		return nil, fmt.Errorf("engine settings: %w", err)
	}

	cv, err := cp.ParseBytes(custom)
	if err != nil {
		return nil, fmt.Errorf("custom settings: %w", err)
	}
	co, err := cv.Object()
	if err != nil {
		return nil, fmt.Errorf("custom settings: %w", err)
	}

	co.Visit(func(key []byte, v *fastjson.Value) {
		eo.Set(string(key), v)
	})
	return ev.MarshalTo(nil), nil
}
