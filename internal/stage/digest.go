package stage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Digest maps slash-separated relative file paths to the xxhash of their contents.
type Digest map[string]uint64

// DigestTree hashes every regular file below root.
func DigestTree(root string) (Digest, error) {
	out := make(Digest)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sum, err := hashFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // G304: hashing staged files
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Diff lists paths that are missing, extra or different in other relative to d.
func (d Digest) Diff(other Digest) []string {
	var out []string
	for p, sum := range d {
		if got, ok := other[p]; !ok {
			out = append(out, "missing "+p)
		} else if got != sum {
			out = append(out, "differs "+p)
		}
	}
	for p := range other {
		if _, ok := d[p]; !ok {
			out = append(out, "extra "+p)
		}
	}
	sort.Strings(out)
	return out
}

// Verify checks that every staged artifact matches its source byte-for-byte.
// Skipped libraries are included: a stale copy left by an older SDK is reported.
func (r *Report) Verify() error {
	var problems []string

	libs := append(append([]Artifact(nil), r.Copied...), r.Skipped...)
	for _, a := range libs {
		want, err := hashFile(a.Source)
		if err != nil {
			return fmt.Errorf("hash %s: %w", a.Source, err)
		}
		got, err := hashFile(a.Dest)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", a.Dest, err))
			continue
		}
		if got != want {
			problems = append(problems, "differs "+a.Dest)
		}
	}

	for _, a := range r.Resources {
		want, err := DigestTree(a.Source)
		if err != nil {
			return fmt.Errorf("digest %s: %w", a.Source, err)
		}
		got, err := DigestTree(a.Dest)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", a.Dest, err))
			continue
		}
		for _, p := range want.Diff(got) {
			problems = append(problems, filepath.Base(a.Dest)+": "+p)
		}
	}

	if len(problems) > 0 {
		return &VerifyError{Problems: problems}
	}
	return nil
}

// VerifyError lists the mismatches found by Report.Verify.
type VerifyError struct {
	Problems []string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("staged artifacts do not match sdk (%d problems): %v", len(e.Problems), e.Problems)
}
