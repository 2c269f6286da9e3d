// Package artifact persists pipeline outputs: JSON documents, gob-encoded Go
// values, and run-scoped artifact directories with a retention lifecycle.
//
// Standalone files go through a Store:
//
//	store := artifact.NewStore(logger)
//	err := store.SaveJSON("artifacts/model_evaluation/metrics.json", metrics)
//	doc, err := store.LoadJSON("artifacts/model_evaluation/metrics.json")
//
//	err = store.SaveObject("artifacts/model_trainer/model.gob", model)
//	model, err := artifact.LoadObjectWith[Model](store, "artifacts/model_trainer/model.gob")
//
// Runs group artifacts under <base>/runs/<runID>/ with a manifest.json that
// records status and a BLAKE2b checksum for every artifact:
//
//	mgr := artifact.NewManager(artifact.ManagerConfig{BaseDir: "artifacts"})
//	run, err := mgr.NewRun("training")
//	err = mgr.SaveJSON(run.ID, "metrics.json", metrics)
//	err = mgr.Complete(run.ID)
//
// LifecycleManager archives and deletes old runs according to a
// RetentionConfig.
package artifact
