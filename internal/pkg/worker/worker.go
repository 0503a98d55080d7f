package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task 异步任务
type Task struct {
	Name  string
	Run   func(ctx context.Context) error
	Retry int // 重试次数
}

// DropFunc 任务被丢弃时的回调（重试耗尽或队列已满）
type DropFunc func(task Task, err error)

type WorkerPool struct {
	TaskQueue  chan Task
	RetryQueue chan Task // 重试队列
	WorkerNum  int
	MaxRetry   int           // 最大重试次数
	RetryDelay time.Duration // 第 n 次重试等待 n*RetryDelay

	log    *zap.Logger
	onDrop DropFunc
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorkerPool(workerNum int, bufferSize int, log *zap.Logger, onDrop DropFunc) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		TaskQueue:  make(chan Task, bufferSize),
		RetryQueue: make(chan Task, bufferSize/2),
		WorkerNum:  workerNum,
		MaxRetry:   3,
		RetryDelay: time.Second,
		log:        log,
		onDrop:     onDrop,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.wg.Add(1)
	go p.retryWorker()
	p.log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 停止所有 worker，队列中未处理的任务直接丢弃
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.TaskQueue:
			p.process(id, task)
		}
	}
}

func (p *WorkerPool) process(id int, task Task) {
	err := task.Run(p.ctx)
	if err == nil {
		return
	}

	p.log.Warn("task failed",
		zap.Int("worker", id),
		zap.String("task", task.Name),
		zap.Int("attempt", task.Retry+1),
		zap.Error(err))

	if task.Retry >= p.MaxRetry {
		p.drop(task, err)
		return
	}

	task.Retry++
	select {
	case p.RetryQueue <- task:
	default:
		p.drop(task, err)
	}
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			timer := time.NewTimer(time.Duration(task.Retry) * p.RetryDelay)
			select {
			case <-p.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			select {
			case p.TaskQueue <- task:
			default:
				p.drop(task, nil)
			}
		}
	}
}

func (p *WorkerPool) drop(task Task, err error) {
	p.log.Error("task dropped", zap.String("task", task.Name), zap.Int("retry", task.Retry), zap.Error(err))
	if p.onDrop != nil {
		p.onDrop(task, err)
	}
}

// AddTask 非阻塞入队，队列满时直接丢弃
func (p *WorkerPool) AddTask(task Task) bool {
	if p.ctx.Err() != nil {
		p.drop(task, p.ctx.Err())
		return false
	}
	select {
	case p.TaskQueue <- task:
		return true
	default:
		p.drop(task, nil)
		return false
	}
}
