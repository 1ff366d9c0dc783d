package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// 常用的檔案權限
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀)
	FileModeReadOnly fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫) - 適用於含有個資的日誌
	FileModePrivate fs.FileMode = 0600
)

// WAL 以 JSON Lines 格式追加寫入的日誌檔
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// Open 開啟或建立一個 WAL 檔案
// O_RDWR 讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func Open(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModePrivate)
	if err != nil {
		return nil, fmt.Errorf("open wal %s: %w", path, err)
	}
	return &WAL{file: file}, nil
}

// Append 寫入一筆資料並刷入硬碟
func (w *WAL) Append(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.file).Encode(v); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close 關閉檔案
func (w *WAL) Close() error {
	return w.file.Close()
}

// Replay 從頭依序讀取所有資料
//
// callback 每次收到一筆 JSON，不會一次將所有資料載入記憶體。
// callback 回傳錯誤時立即停止。
func (w *WAL) Replay(callback func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 確保從頭讀取 (O_APPEND 不影響讀取位置)
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
