// Package upload keeps editor images on local disk and serves them back.
package upload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/folio/internal/errresponse"
	"github.com/SergeyParamoshkin/folio/internal/logctx"
)

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes = 10 << 20

var (
	ErrNotImage = errors.New("upload is not an image")
	ErrTooLarge = errors.New("upload too large")
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes uploads as <unix-millis>_<name> under one directory.
type Store struct {
	dir      string
	prefix   string
	maxBytes int64
	now      func() time.Time
}

// NewStore creates dir if needed. prefix is the public URL path the
// directory is served under, e.g. "/uploads/".
func NewStore(dir, prefix string, maxBytes int64) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads dir: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Store{dir: dir, prefix: prefix, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir is the directory uploads are written to.
func (s *Store) Dir() string { return s.dir }

// URL is the public path of a stored file.
func (s *Store) URL(name string) string { return s.prefix + name }

// Sanitize reduces an uploaded file name to a safe base name.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "._")
	if name == "" {
		return "image"
	}

	return name
}

// Save stores the content of r under a new name derived from name and
// returns that name. Content that does not sniff as an image, or that is
// larger than the store limit, is rejected and nothing is kept.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", ErrNotImage
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(br, s.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	if n > s.maxBytes {
		return "", ErrTooLarge
	}

	stored := strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + Sanitize(name)
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, stored)); err != nil {
		return "", err
	}

	return stored, nil
}

// Response is returned after a successful upload.
type Response struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (u *Response) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Upload handles a multipart POST with the image in the "file" field.
func (s *Store) Upload(w http.ResponseWriter, r *http.Request) {
	log := logctx.From(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, errresponse.ErrTooLarge(ErrTooLarge))

			return
		}
		s.fail(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	defer file.Close()

	name, err := s.Save(header.Filename, file)
	switch {
	case errors.Is(err, ErrNotImage):
		s.fail(w, r, errresponse.ErrValidation(err))

		return
	case errors.Is(err, ErrTooLarge):
		s.fail(w, r, errresponse.ErrTooLarge(err))

		return
	case err != nil:
		log.Errorw("upload write failed", "file", header.Filename, "error", err)
		s.fail(w, r, errresponse.ErrMutation(err))

		return
	}
	log.Infow("image uploaded", "name", name, "size", header.Size)

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, &Response{Name: name, URL: s.URL(name)}); err != nil {
		log.Errorw("render", "error", err)
	}
}

func (s *Store) fail(w http.ResponseWriter, r *http.Request, resp render.Renderer) {
	if err := render.Render(w, r, resp); err != nil {
		logctx.From(r.Context()).Errorw("render", "error", err)
	}
}
