package ui

import (
	"fmt"
	"net/http"

	"parceldash/internal/config"
)

// NewHandler builds the root handler for a server variant
func NewHandler(variant string, opts Options) (http.Handler, error) {
	switch variant {
	case config.VariantChi, "":
		return NewApp(opts).Handler(), nil
	case config.VariantGin:
		return NewServer(opts).Handler(), nil
	default:
		return nil, fmt.Errorf("unknown server variant %q", variant)
	}
}
