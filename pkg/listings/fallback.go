package listings

import (
	"fmt"
	"io/fs"
	"time"
)

// FallbackPath is the sample catalogue inside the seed filesystem.
const FallbackPath = "seed/sample_jobs.json"

// LoadFallback reads a static catalogue in the aggregator's raw shape so it
// passes through the same normalization as live data.
func LoadFallback(fsys fs.FS, path string, now time.Time) ([]Job, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read fallback %s: %w", path, err)
	}
	items, err := ParsePayload(b)
	if err != nil {
		return nil, fmt.Errorf("parse fallback %s: %w", path, err)
	}
	return TransformAll(items, now), nil
}
