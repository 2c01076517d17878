package slides

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lessonvault/internal/catalog"
	"lessonvault/internal/fileutil"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
	"lessonvault/internal/services/aria2"
	"lessonvault/internal/workunit"
)

// BatchFetcher runs one aria2c input manifest.
type BatchFetcher interface {
	DownloadBatch(ctx context.Context, manifestPath, failureMessage string) error
}

// Options controls what the pipeline produces.
type Options struct {
	OutputDir       string
	ConvertToPDF    bool
	AnnotateAnswers bool
	DPI             float64
}

// Pipeline materializes one deck as {output}/{prefix}.pdf, or as the image
// directory {output}/{prefix}/ when PDF assembly is off.
type Pipeline struct {
	opts      Options
	slides    catalog.SlideSource
	fetcher   BatchFetcher
	annotator *Annotator
	logger    *slog.Logger
	buildPDF  func(output string, images []string, dpi float64) error
}

// New constructs a slide pipeline. annotator may be nil when answers are not
// overlaid.
func New(opts Options, slides catalog.SlideSource, fetcher BatchFetcher, annotator *Annotator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		opts:      opts,
		slides:    slides,
		fetcher:   fetcher,
		annotator: annotator,
		logger:    logging.NewComponentLogger(logger, "slides"),
		buildPDF:  BuildPDF,
	}
}

// PDFPath returns the assembled deck for a presentation prefix.
func (p *Pipeline) PDFPath(namePrefix string) string {
	return filepath.Join(p.opts.OutputDir, filepath.FromSlash(namePrefix)+".pdf")
}

// ImageDir returns the directory holding a deck's page images.
func (p *Pipeline) ImageDir(namePrefix string) string {
	return filepath.Join(p.opts.OutputDir, filepath.FromSlash(namePrefix))
}

// ImagePath returns the downloaded image for a page.
func (p *Pipeline) ImagePath(namePrefix string, index int) string {
	return filepath.Join(p.ImageDir(namePrefix), strconv.Itoa(index)+".jpg")
}

// AnswerPath returns the annotated copy of a page.
func (p *Pipeline) AnswerPath(namePrefix string, index int) string {
	return filepath.Join(p.ImageDir(namePrefix), strconv.Itoa(index)+"-ans.jpg")
}

// Run fetches the index-th deck shown during lessonID and writes it under
// "{lessonPrefix}-{index}-{title}". The lesson listing leaves some titles
// blank; those decks are named after the title in their own detail payload,
// which costs the lookup before the existence check.
func (p *Pipeline) Run(ctx context.Context, lessonID string, deck catalog.Presentation, lessonPrefix string, index int, scratchDir string) workunit.Result {
	ctx = services.WithStage(ctx, "slides")
	if strings.TrimSpace(deck.Title) != "" {
		return p.run(ctx, lessonID, deck, catalog.PresentationPrefix(lessonPrefix, index, deck.Title), nil, scratchDir)
	}
	set, err := p.slides.GetSlides(ctx, lessonID, deck.ID)
	namePrefix := catalog.PresentationPrefix(lessonPrefix, index, set.Title)
	if err != nil {
		return workunit.FromError(workunit.KindLessonSlides, namePrefix, fmt.Errorf("fetch slides: %w", err))
	}
	return p.run(ctx, lessonID, deck, namePrefix, &set, scratchDir)
}

// run materializes a deck whose name is settled. set is nil until fetched.
func (p *Pipeline) run(ctx context.Context, lessonID string, deck catalog.Presentation, namePrefix string, set *catalog.SlideSet, scratchDir string) workunit.Result {
	logger := logging.WithContext(ctx, p.logger).With(logging.String("deck", namePrefix))

	if p.opts.ConvertToPDF {
		exists, err := fileutil.Exists(p.PDFPath(namePrefix))
		if err != nil {
			return workunit.FromError(workunit.KindLessonSlides, namePrefix, err)
		}
		if exists {
			logger.Info("slide pdf already present; skipping", logging.String(logging.FieldEventType, "slides_skip_existing"))
			return workunit.Skip(workunit.KindLessonSlides, namePrefix)
		}
	}

	if set == nil {
		fetched, err := p.slides.GetSlides(ctx, lessonID, deck.ID)
		if err != nil {
			return workunit.FromError(workunit.KindLessonSlides, namePrefix, fmt.Errorf("fetch slides: %w", err))
		}
		set = &fetched
	}
	pages := OrderPages(set.Slides)
	if len(pages) == 0 {
		logger.Info("deck has no page images; skipping", logging.String(logging.FieldEventType, "slides_skip_empty"))
		return workunit.Skip(workunit.KindLessonSlides, namePrefix)
	}
	if !p.opts.ConvertToPDF && p.imagesComplete(namePrefix, pages) {
		logger.Info("slide images already present; skipping", logging.String(logging.FieldEventType, "slides_skip_existing"))
		return workunit.Skip(workunit.KindLessonSlides, namePrefix)
	}

	if err := ctx.Err(); err != nil {
		return workunit.FromError(workunit.KindLessonSlides, namePrefix, services.Cancelled("slides", "download", err))
	}
	batch := p.DownloadImages(ctx, namePrefix, pages, scratchDir)
	if !batch.OK() {
		return workunit.FromError(workunit.KindLessonSlides, namePrefix, batch.Err)
	}

	images := make([]string, len(pages))
	for i, page := range pages {
		images[i] = p.ImagePath(namePrefix, page.Index)
	}
	if p.opts.AnnotateAnswers && p.annotator != nil {
		p.annotate(logger, namePrefix, pages, images)
	}

	if !p.opts.ConvertToPDF {
		return workunit.Done(workunit.KindLessonSlides, namePrefix)
	}
	if err := ctx.Err(); err != nil {
		return workunit.FromError(workunit.KindLessonSlides, namePrefix, services.Cancelled("slides", "pdf", err))
	}
	logger.Info("assembling slide pdf", logging.Int("pages", len(images)))
	if err := p.buildPDF(p.PDFPath(namePrefix), images, p.opts.DPI); err != nil {
		return workunit.FromError(workunit.KindSlideAssembly, namePrefix,
			services.Wrap(services.ErrValidation, "slides", "pdf", "Failed to convert "+namePrefix, err))
	}
	return workunit.Done(workunit.KindLessonSlides, namePrefix)
}

// DownloadImages writes one aria2c manifest for every page and fetches them
// in a single batch.
func (p *Pipeline) DownloadImages(ctx context.Context, namePrefix string, pages []catalog.Slide, scratchDir string) workunit.Result {
	dir := p.ImageDir(namePrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return workunit.FromError(workunit.KindSlideBatch, namePrefix, fmt.Errorf("create slide directory: %w", err))
	}
	items := make([]aria2.BatchItem, 0, len(pages))
	for _, page := range pages {
		items = append(items, aria2.BatchItem{
			URL: page.Cover,
			Dir: dir,
			Out: strconv.Itoa(page.Index) + ".jpg",
		})
	}
	manifest := filepath.Join(scratchDir, strings.ReplaceAll(namePrefix, "/", "__")+".aria2.txt")
	if err := aria2.WriteManifest(manifest, items); err != nil {
		return workunit.FromError(workunit.KindSlideBatch, namePrefix, err)
	}
	logging.WithContext(ctx, p.logger).Info("downloading slides", logging.Int("pages", len(items)))
	err := p.fetcher.DownloadBatch(ctx, manifest, "Failed to download "+namePrefix)
	return workunit.FromError(workunit.KindSlideBatch, namePrefix, err)
}

// annotate overlays answers on quiz pages and swaps the annotated copy into
// images at the same slot. A page that cannot be annotated keeps its original.
func (p *Pipeline) annotate(logger *slog.Logger, namePrefix string, pages []catalog.Slide, images []string) {
	for i, page := range pages {
		if page.Problem == nil || len(page.Problem.Answers) == 0 {
			continue
		}
		dst := p.AnswerPath(namePrefix, page.Index)
		if err := p.annotator.Annotate(images[i], dst, page.Problem.Answers); err != nil {
			logging.WarnWithContext(logger, "answer overlay failed", "slide_annotate_failed",
				logging.Int("index", page.Index),
				logging.Error(err),
				logging.String(logging.FieldImpact, "page kept without the answer"),
				logging.String(logging.FieldErrorHint, "delete the page image and re-run to fetch it again"),
			)
			continue
		}
		images[i] = dst
		logger.Debug("answer added", logging.Int("index", page.Index))
	}
}

func (p *Pipeline) imagesComplete(namePrefix string, pages []catalog.Slide) bool {
	for _, page := range pages {
		if ok, err := fileutil.Exists(p.ImagePath(namePrefix, page.Index)); err != nil || !ok {
			return false
		}
	}
	return true
}

// OrderPages drops pages without an image and sorts the rest by Index.
func OrderPages(slides []catalog.Slide) []catalog.Slide {
	out := make([]catalog.Slide, 0, len(slides))
	for _, s := range slides {
		if strings.TrimSpace(s.Cover) == "" {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
