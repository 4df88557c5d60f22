package cgroups

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DestroyConfig carries the kill-pipeline configuration Destroy applies to
// every cgroup in the subtree it tears down.
type DestroyConfig struct {
	Kill KillConfig
}

var DefaultDestroyConfig = DestroyConfig{Kill: DefaultKillConfig}

// Destroy kills every task in cgroup and in every cgroup nested beneath it,
// then removes the whole subtree. cgroup itself is included in the kill
// and removal sweep unless it names the hierarchy's root cgroup ("" or
// "/"), which cannot be removed and must survive the call. Killing is
// fanned out across the subtree concurrently — sibling cgroups share no
// state and gain nothing from being serialized — but removal is strictly
// sequential in the same post-order Enumerate produced: a directory can
// only be rmdir'd once every cgroup nested inside it is already gone.
func Destroy(ctx context.Context, hierarchy, cgroup string, cfg DestroyConfig) *BoolFuture {
	future := newBoolFuture()
	if err := verify(hierarchy, cgroup, ""); err != nil {
		future.resolve(false, err)
		return future
	}
	go runDestroy(ctx, future, hierarchy, cgroup, cfg)
	return future
}

func runDestroy(ctx context.Context, future *BoolFuture, hierarchy, cgroup string, cfg DestroyConfig) {
	nested, err := Enumerate(hierarchy, cgroup)
	if err != nil {
		future.resolve(false, err)
		return
	}

	isRoot := cleanPath(cgroup) == ""

	targets := make([]string, 0, len(nested)+1)
	targets = append(targets, nested...)
	if !isRoot {
		targets = append(targets, cgroup)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			ok, err := KillTasks(gctx, hierarchy, target, cfg.Kill).Get(gctx)
			if err != nil {
				return err
			}
			if !ok {
				return errf(KindInvalidState, target, "tasks remained after kill budget exhausted")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() == nil {
			future.resolve(false, err)
		}
		return
	}

	for _, target := range nested {
		if err := Remove(hierarchy, target); err != nil {
			future.resolve(false, err)
			return
		}
	}
	if !isRoot {
		if err := Remove(hierarchy, cgroup); err != nil {
			future.resolve(false, err)
			return
		}
	}

	future.resolve(true, nil)
}
