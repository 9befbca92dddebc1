package citadel

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"
)

const maxUploadSize = 10 << 20 // 10MiB

var allowedImageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".svg":  {},
}

// ErrUnsupportedType rejects uploads whose extension is not allow-listed.
var ErrUnsupportedType = errors.New("file type not allowed")

// ErrPayloadTooLarge rejects uploads over maxUploadSize before any byte
// is written to disk.
var ErrPayloadTooLarge = errors.New("file too large")

// Assets couples image rows to their on-disk blobs. It is the only
// component that writes files under the uploads directory, so a row and
// its file never diverge outside the documented failure window.
type Assets struct {
	store *Store
	dir   string
}

// NewAssets creates the asset manager rooted at dir.
func NewAssets(store *Store, dir string) *Assets {
	return &Assets{store: store, dir: dir}
}

// Upload validates the payload, writes the blob under a server-generated
// filename, and inserts the metadata row. If the row insert fails the
// just-written file is removed so no orphan is left behind.
func (a *Assets) Upload(ctx context.Context, data []byte, originalName, altText string) (Image, error) {
	if len(data) > maxUploadSize {
		return Image{}, ErrPayloadTooLarge
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedImageExts[ext]; !ok {
		return Image{}, ErrUnsupportedType
	}

	// Opaque token, never derived from the client-supplied name.
	filename := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return Image{}, fmt.Errorf("create uploads dir: %w", err)
	}
	path := filepath.Join(a.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}

	width, height := sniffDimensions(data)
	img := Image{
		Filename:     filename,
		OriginalName: originalName,
		URL:          "/uploads/" + filename,
		AltText:      altText,
		Width:        width,
		Height:       height,
		UploadedAt:   time.Now().UTC(),
	}
	saved, err := a.store.insertImage(ctx, img)
	if err != nil {
		_ = os.Remove(path)
		return Image{}, err
	}
	return saved, nil
}

// Delete removes the row first (the row is authoritative), then the
// file. A file that is already gone does not fail the delete.
func (a *Assets) Delete(ctx context.Context, id int64) error {
	img, err := a.store.getImage(ctx, id)
	if err != nil {
		return err
	}
	if err := a.store.deleteImageRow(ctx, id); err != nil {
		return err
	}
	_ = os.Remove(filepath.Join(a.dir, img.Filename))
	return nil
}

// FilePath resolves a stored filename to its on-disk path, rejecting
// anything that could traverse outside the uploads root.
func (a *Assets) FilePath(filename string) (string, error) {
	if filename == "" ||
		strings.ContainsAny(filename, `/\`) ||
		strings.Contains(filename, "..") {
		return "", ErrNotFound
	}
	path := filepath.Join(a.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// sniffDimensions decodes just the image header for width/height.
// Returns zeros for formats without a registered decoder (SVG).
func sniffDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

const imageColumns = `id, filename, original_name, url, alt_text, width, height, uploaded_at`

func scanImage(row rowScanner) (Image, error) {
	var (
		img           Image
		width, height sql.NullInt64
		uploadedAt    int64
	)
	err := row.Scan(&img.ID, &img.Filename, &img.OriginalName, &img.URL,
		&img.AltText, &width, &height, &uploadedAt)
	if err != nil {
		return Image{}, err
	}
	img.Width = int(width.Int64)
	img.Height = int(height.Int64)
	img.UploadedAt = fromMillis(uploadedAt)
	return img, nil
}

// ListImages returns all image rows, newest upload first.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM images ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := make([]Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *Store) getImage(ctx context.Context, id int64) (Image, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	return scanImage(row)
}

func (s *Store) insertImage(ctx context.Context, img Image) (Image, error) {
	var width, height any
	if img.Width > 0 {
		width = img.Width
	}
	if img.Height > 0 {
		height = img.Height
	}
	var saved Image
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO images (filename, original_name, url, alt_text, width, height, uploaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			img.Filename, img.OriginalName, img.URL, img.AltText, width, height,
			toMillis(img.UploadedAt))
		if err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		saved, err = scanImage(tx.QueryRowContext(ctx,
			`SELECT `+imageColumns+` FROM images WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return Image{}, err
	}
	return saved, nil
}

func (s *Store) deleteImageRow(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *App) handleImageList(c echo.Context) error {
	images, err := a.Store.ListImages(c.Request().Context())
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"images": images})
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file provided"})
	}
	if file.Filename == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file selected"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "File too large (max 10MB)"})
	}

	src, err := file.Open()
	if err != nil {
		return serverError(c, err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return serverError(c, err)
	}

	img, err := a.Assets.Upload(c.Request().Context(), data, file.Filename, c.FormValue("alt_text"))
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File type not allowed"})
	case errors.Is(err, ErrPayloadTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "File too large (max 10MB)"})
	case err != nil:
		return serverError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Image uploaded successfully",
		"image": echo.Map{
			"id":       img.ID,
			"filename": img.Filename,
			"url":      img.URL,
		},
	})
}

func (a *App) handleImageDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}
	if err := a.Assets.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Image deleted successfully",
	})
}

func (a *App) handleUploadServe(c echo.Context) error {
	path, err := a.Assets.FilePath(c.Param("filename"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "File not found"})
	}
	return c.File(path)
}
