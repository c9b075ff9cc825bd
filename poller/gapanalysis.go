package poller

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DiskFilesystem is the production Filesystem: it reads the real
// tool-written manifest first (spec.md §4.4's "M3U8" method) and falls
// back to a directory listing (the "FILE" method) when that fails for
// any reason — the manifest may be momentarily unreadable mid-rotation.
type DiskFilesystem struct{}

func (DiskFilesystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (DiskFilesystem) HighestSegmentIndex(transcodeDir, identifier string) (int, error) {
	if idx, err := highestFromManifest(transcodeDir, identifier); err == nil {
		return idx, nil
	}
	return highestFromFileListing(transcodeDir, identifier)
}

func highestFromManifest(transcodeDir, identifier string) (int, error) {
	path := filepath.Join(transcodeDir, identifier+".m3u8")
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	re := regexp.MustCompile(regexp.QuoteMeta(identifier) + `(\d+)\.ts`)
	matches := re.FindAllStringSubmatch(string(contents), -1)
	if len(matches) == 0 {
		return 0, nil
	}

	last := matches[len(matches)-1][1]
	idx, err := strconv.Atoi(last)
	if err != nil {
		return 0, err
	}
	return idx, nil
}

func highestFromFileListing(transcodeDir, identifier string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(transcodeDir, identifier+"*.ts"))
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, nil
	}

	sort.Strings(matches)
	last := filepath.Base(matches[len(matches)-1])
	suffix := strings.TrimSuffix(strings.TrimPrefix(last, identifier), ".ts")

	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, nil
	}
	return idx, nil
}
