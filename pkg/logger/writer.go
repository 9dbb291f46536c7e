package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileWriter appends JSON lines to logDir/<date>/app-<date>-<n>.log and
// rotates on a new day or when maxSize is reached
type fileWriter struct {
	mu           sync.Mutex
	file         *os.File
	writer       *bufio.Writer
	currentSize  int64
	currentDate  string
	currentIndex int
	maxSize      int64
	logDir       string
	bufferSize   int
	now          func() time.Time
}

func newFileWriter(dir string, maxSize int64, bufferSize int) *fileWriter {
	return &fileWriter{
		maxSize:    maxSize,
		logDir:     dir,
		bufferSize: bufferSize,
		now:        time.Now,
	}
}

func (fw *fileWriter) ensureCurrentFile() error {
	currentDate := fw.now().Format("2006-01-02")
	if fw.file == nil || fw.currentDate != currentDate || fw.currentSize >= fw.maxSize {
		return fw.rotateFile(currentDate)
	}
	return nil
}

func (fw *fileWriter) rotateFile(date string) error {
	if fw.writer != nil {
		_ = fw.writer.Flush()
		fw.writer = nil
	}
	if fw.file != nil {
		_ = fw.file.Close()
		fw.file = nil
	}

	if fw.currentDate != date {
		fw.currentIndex = 0
		fw.currentDate = date
	} else {
		fw.currentIndex++
	}

	filename := fmt.Sprintf("app-%s-%03d.log", date, fw.currentIndex)
	logFilePath := filepath.Join(fw.logDir, date, filename)

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %w", err)
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	fw.file = file
	fw.writer = bufio.NewWriterSize(file, fw.bufferSize)
	fw.currentSize = stat.Size()

	return nil
}

func (fw *fileWriter) writeEntry(entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if err := fw.ensureCurrentFile(); err != nil {
		return err
	}

	data = append(data, '\n')
	n, err := fw.writer.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	fw.currentSize += int64(n)

	return nil
}

func (fw *fileWriter) flush() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.writer != nil {
		return fw.writer.Flush()
	}
	return nil
}

func (fw *fileWriter) close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var err error
	if fw.writer != nil {
		err = fw.writer.Flush()
		fw.writer = nil
	}
	if fw.file != nil {
		if e := fw.file.Close(); e != nil && err == nil {
			err = e
		}
		fw.file = nil
	}
	return err
}
