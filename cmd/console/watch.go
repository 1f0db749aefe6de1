package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/optica-admin/pkg/collection"
	"github.com/jwalitptl/optica-admin/pkg/messaging"
	"github.com/jwalitptl/optica-admin/pkg/messaging/redis"
)

func newWatchCmd(a *app) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "watch <resource>",
		Short: "Keep a collection on screen and refresh it when it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.screen(args[0])
			if err != nil {
				return err
			}
			q, err := flags.query(a.perPage())
			if err != nil {
				return err
			}

			broker, err := redis.NewRedisBroker(a.cfg.Redis, a.log.Zerolog())
			if err != nil {
				return err
			}
			feed := messaging.NewChangeFeed(broker, a.log.Zerolog())
			defer feed.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, s, q, feed)
		},
	}
	flags.register(cmd)
	return cmd
}

// watcher is the subscribe side of a change feed.
type watcher interface {
	Watch(ctx context.Context, kind string, h messaging.Handler) (<-chan struct{}, error)
}

// watch renders s once and again after every change event of its kind,
// until ctx is cancelled.
func (a *app) watch(ctx context.Context, s screen, q collection.Query, feed watcher) error {
	refetch, closeView := s.Watch(ctx, q, func(out string) {
		fmt.Fprint(a.out, "\033[H\033[2J"+out)
	})
	defer closeView()

	done, err := feed.Watch(ctx, s.Kind(), func(ctx context.Context, ev messaging.ChangeEvent) error {
		a.log.Debug("Collection changed", "kind", ev.Kind, "action", ev.Action, "id", ev.ID)
		return refetch(ctx)
	})
	if err != nil {
		return err
	}
	if err := refetch(ctx); err != nil {
		a.log.Warn("Initial load failed", "error", err.Error())
	}

	<-done
	return nil
}
