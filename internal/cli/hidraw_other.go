//go:build !linux

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/nibblemouse/pkg"
)

// Run fails: hidraw is Linux only.
func (c *HidrawCmd) Run(ctx context.Context, out io.Writer) error {
	return fmt.Errorf("hidraw: %w", pkg.ErrNotSupported)
}
