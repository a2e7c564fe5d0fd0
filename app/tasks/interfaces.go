package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API layer to manage background
// normalization work.
// Example usage:
//
//	scheduler := NewScheduler(productRepo, service)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewNormalizeBatchTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
