package illustrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/trmquang93/magical-stories-sub004/internal/storage/file"
)

const (
	illustrationSubdir = "illustrations"
	thumbnailSubdir    = "thumbnails"

	thumbnailWidth  = 256
	thumbnailHeight = 256
)

// imageGenerator defines the interface for the remote image backend.
type imageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// artifactStore defines the interface for persisting generated
// artwork.
type artifactStore interface {
	Save(ctx context.Context, subdir, filename, contentType string, src io.Reader) (string, error)
}

// Illustrator turns a planned page description into a stored artwork
// object. It builds the final image prompt, invokes the generation
// backend, persists the result and a thumbnail variant, and returns
// the original's object reference.
type Illustrator struct {
	generator   imageGenerator
	store       artifactStore
	styleSuffix string
}

// New creates an Illustrator. styleSuffix is appended to every prompt
// so all pages of a story share one visual style.
func New(g imageGenerator, store artifactStore, styleSuffix string) *Illustrator {
	return &Illustrator{
		generator:   g,
		store:       store,
		styleSuffix: styleSuffix,
	}
}

// GenerateIllustration produces and stores the artwork for one page.
// An empty reference with a nil error means the backend produced no
// image.
func (il *Illustrator) GenerateIllustration(ctx context.Context, description string, pageIndex, totalPages int) (string, error) {
	prompt := il.buildPrompt(description, pageIndex, totalPages)

	data, contentType, err := il.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate illustration: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	filename := uuid.New().String() + file.ExtensionFor(contentType)
	ref, err := il.store.Save(ctx, illustrationSubdir, filename, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("store illustration: %w", err)
	}

	// Thumbnails are a convenience for list views; losing one never
	// fails the page.
	if err := il.saveThumbnail(ctx, filename, data); err != nil {
		zlog.Logger.Warn().Err(err).Str("filename", filename).Msg("failed to store thumbnail")
	}

	return ref, nil
}

func (il *Illustrator) buildPrompt(description string, pageIndex, totalPages int) string {
	var b strings.Builder

	b.WriteString(description)
	fmt.Fprintf(&b, " (Illustration %d of %d in the same picture book.)", pageIndex+1, totalPages)
	if il.styleSuffix != "" {
		b.WriteString(" ")
		b.WriteString(il.styleSuffix)
	}

	return b.String()
}

func (il *Illustrator) saveThumbnail(ctx context.Context, filename string, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode illustration: %w", err)
	}

	thumb := imaging.Thumbnail(img, thumbnailWidth, thumbnailHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, thumb, imaging.PNG); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}

	thumbName := strings.TrimSuffix(filename, path.Ext(filename)) + ".png"
	if _, err := il.store.Save(ctx, thumbnailSubdir, thumbName, "image/png", buf); err != nil {
		return err
	}
	return nil
}
