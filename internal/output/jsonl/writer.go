// Package jsonl 实现扫描报告与调用指标的异步 JSONL 落盘。
// 投递走带缓冲的 channel，编码与文件 I/O 在后台 goroutine 完成，扫描循环不被磁盘阻塞。
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrClosed 写入器已关闭
var ErrClosed = errors.New("jsonl writer 已关闭")

type request struct {
	val  any
	done chan error // 非空表示 flush 请求
}

// Writer 异步 JSONL 写入器
type Writer struct {
	path   string
	ch     chan request
	logger *zap.Logger

	// mu 保护 closed 与 channel 发送，避免向已关闭的 channel 投递
	mu     sync.RWMutex
	closed bool

	written atomic.Int64
	failed  atomic.Int64

	wg       sync.WaitGroup
	closeErr error
}

// NewWriter 创建 JSONL 写入器（追加模式）
// 参数 path: 输出文件路径，父目录不存在时自动创建
// 参数 bufferSize: 投递缓冲区大小
// 参数 logger: 日志记录器，可为空
func NewWriter(path string, bufferSize int, logger *zap.Logger) (*Writer, error) {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败: %w", err)
	}

	w := &Writer{
		path:   path,
		ch:     make(chan request, bufferSize),
		logger: logger.With(zap.String("path", path)),
	}
	w.wg.Add(1)
	go w.loop(f)
	return w, nil
}

// Path 输出文件路径
func (w *Writer) Path() string {
	return w.path
}

// Write 投递一条记录
func (w *Writer) Write(v any) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	w.ch <- request{val: v}
	return nil
}

// Flush 等待已投递记录写入文件
func (w *Writer) Flush() error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return nil
	}
	done := make(chan error, 1)
	w.ch <- request{done: done}
	w.mu.RUnlock()
	return <-done
}

// Written 成功写入的记录数
func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Close 关闭写入器，剩余记录会被写入并 flush
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.wg.Wait()
		return w.closeErr
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()

	w.wg.Wait()
	return w.closeErr
}

func (w *Writer) loop(f *os.File) {
	defer w.wg.Done()

	bw := bufio.NewWriterSize(f, 64<<10)
	for req := range w.ch {
		if req.done != nil {
			req.done <- bw.Flush()
			continue
		}

		b, err := json.Marshal(req.val)
		if err == nil {
			b = append(b, '\n')
			_, err = bw.Write(b)
		}
		if err != nil {
			w.failed.Add(1)
			w.logger.Warn("写入 JSONL 记录失败", zap.Error(err))
			continue
		}
		w.written.Add(1)
	}

	w.closeErr = errors.Join(bw.Flush(), f.Close())
	if n := w.failed.Load(); n > 0 {
		w.logger.Warn("JSONL 写入器关闭，存在失败记录", zap.Int64("failed", n))
	}
}
