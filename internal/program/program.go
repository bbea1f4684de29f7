// Package program packages a job artifact for submission and turns it into a
// controlplane.JobGraph.
package program

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
)

// Packaged is an opened job artifact. It must be closed once the job has
// been submitted, whatever the outcome.
type Packaged struct {
	spec   api.JobSpec
	file   *os.File
	digest string

	closeOnce sync.Once
	closeErr  error
}

// Package opens the artifact named by spec and fingerprints it.
func Package(spec api.JobSpec) (*Packaged, error) {
	f, err := os.Open(spec.JarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open job artifact %s: %w", spec.JarPath, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat job artifact %s: %w", spec.JarPath, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, &api.ValidationError{Field: "job.jarPath", Message: spec.JarPath + " is a directory"}
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read job artifact %s: %w", spec.JarPath, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind job artifact %s: %w", spec.JarPath, err)
	}

	return &Packaged{
		spec:   spec,
		file:   f,
		digest: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Digest returns the hex sha256 of the artifact.
func (p *Packaged) Digest() string {
	return p.digest
}

// Spec returns the job spec the artifact was packaged from.
func (p *Packaged) Spec() api.JobSpec {
	return p.spec
}

// Close releases the artifact. It is safe to call more than once.
func (p *Packaged) Close() error {
	if p == nil {
		return nil
	}
	p.closeOnce.Do(func() {
		p.closeErr = p.file.Close()
	})
	return p.closeErr
}

// BuildJobGraph turns a packaged artifact into a job graph. Parallelism
// falls back to parallelism.default when the job spec does not set it.
func BuildJobGraph(p *Packaged, cfg config.Configuration) (controlplane.JobGraph, error) {
	if p == nil || p.file == nil {
		return controlplane.JobGraph{}, errors.New("job artifact is not packaged")
	}

	parallelism := p.spec.Parallelism
	if parallelism <= 0 {
		parallelism = cfg.GetInt(config.KeyParallelism, 1)
	}

	name := strings.TrimSuffix(filepath.Base(p.spec.JarPath), filepath.Ext(p.spec.JarPath))

	return controlplane.JobGraph{
		JobID:                 NewJobID(),
		Name:                  name,
		EntryClass:            p.spec.EntryClass,
		Args:                  append([]string(nil), p.spec.Args...),
		Parallelism:           parallelism,
		SavepointPath:         p.spec.SavepointPath,
		AllowNonRestoredState: p.spec.AllowNonRestoredState,
		ArtifactName:          filepath.Base(p.spec.JarPath),
		Artifact:              p.file,
	}, nil
}

// NewJobID returns a random 32 character hex job id.
func NewJobID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
