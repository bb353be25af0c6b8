package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/JonMunkholm/menuconv/internal/core"
	"github.com/JonMunkholm/menuconv/internal/logging"
	"github.com/JonMunkholm/menuconv/internal/web/templates"
)

// Multipart field names of a conversion request.
const (
	fieldProducts = "products"
	fieldImages   = "images"
	fieldLayout   = "layout"
)

// multipartMemory is the part of a form kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// conversionResponse is the JSON view of a finished conversion.
type conversionResponse struct {
	ID          string            `json:"id"`
	ProductFile string            `json:"product_file"`
	ImageFile   string            `json:"image_file"`
	Layout      string            `json:"layout"`
	Stats       core.Stats        `json:"stats"`
	Fallbacks   []core.Fallback   `json:"fallbacks"`
	Preview     []string          `json:"preview"`
	Downloads   map[string]string `json:"downloads"`
	CreatedAt   time.Time         `json:"created_at"`
}

func newConversionResponse(res *core.Result) conversionResponse {
	fallbacks := res.Fallbacks
	if fallbacks == nil {
		fallbacks = []core.Fallback{}
	}
	base := "/api/conversions/" + res.ID + "/download?format="
	return conversionResponse{
		ID:          res.ID,
		ProductFile: res.ProductFile,
		ImageFile:   res.ImageFile,
		Layout:      res.Layout,
		Stats:       res.Stats,
		Fallbacks:   fallbacks,
		Preview:     res.Preview(core.PreviewLines),
		Downloads: map[string]string{
			"tsv":  base + "tsv",
			"xlsx": base + "xlsx",
		},
		CreatedAt: res.CreatedAt,
	}
}

// handleConvertForm runs a conversion submitted from the dashboard form.
// HTMX requests get the result fragment; plain form posts are redirected to
// the result page.
func (s *Server) handleConvertForm(w http.ResponseWriter, r *http.Request) {
	res, err := s.convertUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/conversion/"+res.ID, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view := templates.ConversionResult(templates.ResultData{
		Result:  res,
		Preview: res.Preview(core.PreviewLines),
	})
	if err := view.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render conversion result", "error", err)
	}
}

// handleConvertAPI runs a conversion and returns it as JSON.
func (s *Server) handleConvertAPI(w http.ResponseWriter, r *http.Request) {
	res, err := s.convertUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Location", "/api/conversions/"+res.ID)
	writeJSON(w, http.StatusCreated, newConversionResponse(res))
}

// convertUpload reads both exports from a multipart request and converts them.
func (s *Server) convertUpload(w http.ResponseWriter, r *http.Request) (*core.Result, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", errFileTooLarge, maxBytes.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	products, productHeader, err := openUpload(r, fieldProducts, maxSize)
	if err != nil {
		return nil, err
	}
	defer products.Close()

	images, imageHeader, err := openUpload(r, fieldImages, maxSize)
	if err != nil {
		return nil, err
	}
	defer images.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	return s.service.Convert(ctx, core.ConvertInput{
		ProductFile: productHeader.Filename,
		Products:    products,
		ImageFile:   imageHeader.Filename,
		Images:      images,
		Layout:      r.FormValue(fieldLayout),
	})
}

// openUpload returns the file posted under field, enforcing maxSize.
func openUpload(r *http.Request, field string, maxSize int64) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("%w: %s", errNoFile, field)
		}
		return nil, nil, fmt.Errorf("%w: %s: %v", errNoFile, field, err)
	}
	if maxSize > 0 && header.Size > maxSize {
		file.Close()
		return nil, nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", errFileTooLarge, header.Filename, header.Size, maxSize)
	}
	return file, header, nil
}
