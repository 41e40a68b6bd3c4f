package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/himanshuverma8/news-scraper/app/feed"
)

// Result is the outcome of one task, delivered on the pool's result channel.
type Result struct {
	Index    int // position of the task in the slice passed to Run
	TaskID   string
	Source   string
	Records  []feed.Record
	Err      error
	Duration time.Duration
}

// Pool runs tasks on a fixed number of workers.
type Pool struct {
	workerCount int
	taskTimeout time.Duration
}

func NewPool(workerCount int, taskTimeout time.Duration) *Pool {
	return &Pool{
		workerCount: max(workerCount, 1),
		taskTimeout: taskTimeout,
	}
}

// Run starts the workers and returns a channel that yields exactly one Result
// per task and is closed once every task has finished. Results arrive in
// completion order; Result.Index maps each back to its task.
func (p *Pool) Run(ctx context.Context, tasks []TaskInterface) <-chan Result {
	type job struct {
		index int
		task  TaskInterface
	}

	taskQueue := make(chan job, len(tasks))
	for i, task := range tasks {
		taskQueue <- job{index: i, task: task}
	}
	close(taskQueue)

	results := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < min(p.workerCount, max(len(tasks), 1)); i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range taskQueue {
				result := p.executeTask(ctx, id, j.task)
				result.Index = j.index
				results <- result
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Pool) executeTask(ctx context.Context, workerID int, task TaskInterface) Result {
	task.Start()

	taskCtx := ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	records, err := task.Execute(taskCtx)
	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "feed", task.GetSource(), "error", err)
	}

	return Result{
		TaskID:   task.GetID(),
		Source:   task.GetSource(),
		Records:  records,
		Err:      err,
		Duration: task.GetDuration(),
	}
}
