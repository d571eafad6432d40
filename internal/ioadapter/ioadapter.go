// Package ioadapter resolves a job's input/output directories against
// either the host filesystem or the GPFS store, and prepares the output
// side for a fresh run.
package ioadapter

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gimlids/mrgp/internal/gpfs"
)

// Side marks whether a job's input or output directory lives in GPFS.
type Side struct {
	Input  bool
	Output bool
}

// Plan is the resolved result of preparing a job's I/O: which sides are
// GPFS-backed, and the enumerated input shard names.
type Plan struct {
	Side    Side
	Infiles []string
}

// Resolve enumerates indir and prepares outdir for a fresh job, per
// mrs_gp.py's setupFiles: a pre-existing host-fs outdir is wiped and
// recreated, a GPFS outdir is emptied via RmDir.
func Resolve(fs *gpfs.FS, log *logrus.Logger, indir, outdir string) (Plan, error) {
	var plan Plan

	if gpfs.HasPrefix(indir) {
		plan.Side.Input = true
		plan.Infiles = fs.ListFiles(indir)
	} else {
		entries, err := os.ReadDir(indir)
		if err != nil {
			return Plan{}, errors.Wrapf(err, "reading input directory %q", indir)
		}
		for _, e := range entries {
			if !e.IsDir() {
				plan.Infiles = append(plan.Infiles, e.Name())
			}
		}
	}

	if gpfs.HasPrefix(outdir) {
		plan.Side.Output = true
		fs.RmDir(outdir)
	} else {
		if _, err := os.Stat(outdir); err == nil {
			log.WithField("dir", outdir).Warn("removing existing output directory")
			if err := os.RemoveAll(outdir); err != nil {
				return Plan{}, errors.Wrapf(err, "removing output directory %q", outdir)
			}
		} else if !os.IsNotExist(err) {
			return Plan{}, errors.Wrapf(err, "stat output directory %q", outdir)
		}
		if err := os.MkdirAll(outdir, 0o755); err != nil {
			return Plan{}, errors.Wrapf(err, "creating output directory %q", outdir)
		}
	}

	log.WithFields(logrus.Fields{
		"indir":   indir,
		"outdir":  outdir,
		"infiles": len(plan.Infiles),
	}).Info("resolved job inputs")

	return plan, nil
}
