package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csvpilot/domain/core"
)

// DefaultUser namespaces output artifacts when the caller does not identify
// one
const DefaultUser = "local"

// RunScope is the identifier triple (plus user namespace) that isolates one
// workflow invocation's artifacts from every other run. Two concurrent
// sessions can never collide because every path below OutputDir embeds all
// three identifiers.
type RunScope struct {
	User      string
	DatasetID core.DatasetID
	SessionID core.SessionID
	RunID     core.RunID
}

// DeriveScope builds the scope for a workflow invocation. The dataset id is
// a fingerprint of basename+size+mtime so re-uploads of the same file map to
// the same dataset; the run id comes from the invocation time.
func DeriveScope(filePath, user string, sessionKey core.SessionID) RunScope {
	if user == "" {
		user = DefaultUser
	}

	datasetID := core.DatasetID("ds_default")
	if filePath != "" {
		var size, mtime int64
		if info, err := os.Stat(filePath); err == nil {
			size = info.Size()
			mtime = info.ModTime().UnixMilli()
		}
		fp := core.FingerprintFile(filepath.Base(filePath), size, mtime)
		datasetID = core.DatasetID("ds_" + fp.String())
	}

	if sessionKey == "" {
		sessionKey = core.SessionID("sess_" + strings.TrimPrefix(string(datasetID), "ds_"))
	}

	return RunScope{
		User:      user,
		DatasetID: datasetID,
		SessionID: sessionKey,
		RunID:     core.RunID(fmt.Sprintf("run_%d", time.Now().UnixMilli())),
	}
}

// OutputDir returns the run's artifact directory under outputsRoot:
// <outputsRoot>/<user>/<datasetId>/<sessionId>/runs/<runId>
func (s RunScope) OutputDir(outputsRoot string) string {
	return filepath.Join(outputsRoot, s.User, string(s.DatasetID), string(s.SessionID), "runs", string(s.RunID))
}

// EnsureOutputDir creates the run directory; safe to call more than once
func (s RunScope) EnsureOutputDir(outputsRoot string) (string, error) {
	dir := s.OutputDir(outputsRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return dir, nil
}

// NormalizeArtifactPath rewrites an absolute or root-relative artifact path
// into the stable web-servable form rooted at "outputs/", regardless of the
// filesystem layout underneath. Separators are always forward slashes.
func NormalizeArtifactPath(outputsRoot, p string) string {
	if p == "" {
		return ""
	}
	rel, err := filepath.Rel(outputsRoot, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = p
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "outputs/")
	return "outputs/" + strings.TrimPrefix(rel, "/")
}
