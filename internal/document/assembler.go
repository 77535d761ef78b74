package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"screendoc/internal/config"
	"screendoc/internal/fileutil"
	"screendoc/internal/logging"
	"screendoc/internal/queue"
	"screendoc/internal/redact"
	"screendoc/internal/services"
	"screendoc/internal/stage"
	"screendoc/internal/textutil"
)

// Assembler is the final stage handler. It copies the final images into the
// output bundle, resolves frame markers in the narrative, and removes the
// extracted frames once the bundle is written.
type Assembler struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewAssembler constructs the assembler stage handler.
func NewAssembler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Assembler {
	return &Assembler{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "assembler"),
	}
}

func (a *Assembler) Prepare(ctx context.Context, job *queue.Job) error {
	if job.NarrativePath == "" {
		return services.Wrap(
			services.ErrValidation,
			"assembling",
			"validate inputs",
			"No narrative recorded; narration must run before assembly",
			nil,
		)
	}
	job.SetProgress("Assembling document", "Preparing output bundle", 0)
	job.ErrorMessage = ""
	return nil
}

func (a *Assembler) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, a.logger)

	narrativeBytes, err := os.ReadFile(job.NarrativePath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "assembling", "read narrative", "Narrative file missing; rerun narration", err)
	}
	finals, err := redact.DecodeFinalImages(job.FinalImagesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "assembling", "decode final images", "Stored final image list unreadable", err)
	}

	bundleDir := filepath.Join(a.cfg.Paths.OutputDir, bundleName(job))
	imagesDir := filepath.Join(bundleDir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "assembling", "create bundle directory", "Cannot create output bundle directory", err)
	}

	images := make([]Image, 0, len(finals))
	for i, final := range finals {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := fmt.Sprintf("frame_%02d%s", final.Position, filepath.Ext(final.Path))
		dest := filepath.Join(imagesDir, name)
		if err := fileutil.CopyFileVerified(final.Path, dest); err != nil {
			return services.Wrap(services.ErrTransient, "assembling", "copy image", fmt.Sprintf("Cannot copy final image %d into bundle", final.Position), err)
		}
		images = append(images, Image{Position: final.Position, RelPath: filepath.Join("images", name)})
		job.SetProgress("Assembling document", fmt.Sprintf("Copied image %d of %d", i+1, len(finals)), float64(i+1)/float64(len(finals))*80)
	}

	markdown := Build(string(narrativeBytes), images)
	documentPath := filepath.Join(bundleDir, "document.md")
	if err := os.WriteFile(documentPath, []byte(markdown), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "assembling", "write document", "Cannot write assembled document", err)
	}
	job.DocumentPath = documentPath

	// The bundle holds everything the user needs; extracted frames are
	// scratch space from here on.
	if job.FramesDir != "" {
		if err := os.RemoveAll(filepath.Dir(job.FramesDir)); err != nil {
			logger.Warn("failed to remove staging directory", logging.Error(err))
		}
	}

	job.SetProgressComplete("Assembling document", fmt.Sprintf("Document written to %s", documentPath))
	logger.Info("document assembled",
		logging.String("document", documentPath),
		logging.Int("images", len(images)))
	return nil
}

func (a *Assembler) HealthCheck(ctx context.Context) stage.Health {
	if a.cfg.Paths.OutputDir == "" {
		return stage.Unhealthy("assembler", "output directory not configured")
	}
	return stage.Healthy("assembler")
}

func bundleName(job *queue.Job) string {
	return fmt.Sprintf("%s-%d", textutil.Slug(job.Title, "recording"), job.ID)
}
