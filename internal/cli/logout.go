package cli

import (
	"context"
	"fmt"
)

// Logout wipes every locally cached credential and the session key, in both
// storage tiers. Safe to run repeatedly.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All local credentials cleared")
	return nil
}
