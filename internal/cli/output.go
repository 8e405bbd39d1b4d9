package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// emit writes v as indented JSON when the json format is selected, and calls
// text otherwise.
func (a *app) emit(w io.Writer, v any, text func(w io.Writer) error) error {
	if a.opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return nil
	}
	return text(w)
}
