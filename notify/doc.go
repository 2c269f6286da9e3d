// Package notify delivers run lifecycle events.
//
// An artifact.Manager configured with a Notifier reports when runs start,
// finish, or fail and when artifacts are saved:
//
//	notifier := notify.NewMultiNotifier(
//	    notify.NewLogNotifier(logger),
//	    notify.NewWebhookNotifier(hookURL, map[string]string{"Authorization": "Bearer " + token}),
//	)
//	mgr := artifact.NewManager(artifact.ManagerConfig{BaseDir: "artifacts", Notifier: notifier})
package notify
