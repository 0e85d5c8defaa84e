package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"video-relay-go/internal/config"
)

// The file backend appends one JSON document per line; listing reads
// the whole file, which is acceptable for the default backend's scale.

var fileMu sync.Mutex

func historyPath() string {
	dir := strings.TrimSpace(config.AppConfig.DataDir)
	if dir == "" {
		dir = "data"
	}
	return filepath.Join(dir, "resolutions.jsonl")
}

func fileSaveResolution(row ResolutionRow) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	p := historyPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(row)
}

func fileListResolutions(limit int) ([]ResolutionRow, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	f, err := os.Open(historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []ResolutionRow
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r ResolutionRow
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue // skip corrupt lines
		}
		all = append(all, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// Newest first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
