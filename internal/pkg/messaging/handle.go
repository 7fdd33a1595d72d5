package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/carventure/sellerhub/internal/pkg/stacktrace"
)

// dispatch runs handler with panic recovery and applies auto-ack.
func dispatch(ctx context.Context, driver string, handler Handler, msg Message, autoAck bool) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}

		if !autoAck {
			return
		}
		if err == nil {
			if ackErr := msg.Ack(ctx); ackErr != nil {
				slog.WarnContext(ctx, "failed to ack message", "driver", driver, "error", ackErr)
			}
			return
		}
		if nackErr := msg.Nack(ctx); nackErr != nil {
			slog.WarnContext(ctx, "failed to nack message", "driver", driver, "error", nackErr)
		}
	}()

	return handler(ctx, msg)
}
