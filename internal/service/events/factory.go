package events

import (
	"context"
	"strings"
)

type actionFunc func(context.Context, Event) error

type actionFactory struct {
	byStatus map[string]actionFunc
}

func newActionFactory(onProgress, onCompleted, onCanceled actionFunc) *actionFactory {
	return &actionFactory{
		byStatus: map[string]actionFunc{
			"created":   onProgress,
			"paid":      onProgress,
			"accepted":  onProgress,
			"picked_up": onProgress,
			"delivered": onProgress,
			"completed": onCompleted,
			"canceled":  onCanceled,
			"deleted":   onCanceled,
		},
	}
}

func (f *actionFactory) get(status string) (actionFunc, bool) {
	fn, ok := f.byStatus[strings.ToLower(strings.TrimSpace(status))]
	return fn, ok
}
