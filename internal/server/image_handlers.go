package server

import (
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/render"
	"github.com/MeKo-Tech/moore/internal/utils"
)

const formatOverlay = "overlay"

// traceImageHandler traces the object in an uploaded image.
func (s *Server) traceImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "File too large", "invalid_request", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", "invalid_request", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", "invalid_request", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", "internal_error", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	img, _, err := utils.DecodeImageBytes(data)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", "invalid_image", http.StatusBadRequest)
		return
	}

	opts, err := s.binarizeOptions(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), "invalid_request", http.StatusBadRequest)
		return
	}

	g, err := utils.Binarize(img, opts)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), "invalid_image", http.StatusBadRequest)
		return
	}

	res, err := s.trace(r.Context(), sourceImage, g, header.Filename)
	if err != nil {
		s.writeTraceError(w, err)
		return
	}

	format := r.FormValue("format")
	if format == formatOverlay {
		s.handleOverlayOutput(w, r, img, res.Points)
		return
	}
	s.writeResult(w, res, format)
}

// binarizeOptions applies the threshold and invert request parameters on
// top of the server defaults.
func (s *Server) binarizeOptions(r *http.Request) (utils.BinarizeOptions, error) {
	opts := s.binarize
	if v := r.FormValue("threshold"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return opts, errors.New("threshold must be an integer between 0 and 255")
		}
		opts.Threshold = uint8(n)
	}
	if v := r.FormValue("invert"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invert must be a boolean")
		}
		opts.Invert = b
	}
	return opts, nil
}

// handleOverlayOutput responds with a PNG of the contour drawn over img.
func (s *Server) handleOverlayOutput(w http.ResponseWriter, r *http.Request, img image.Image, c contour.Contour) {
	if !s.overlayEnabled {
		http.Error(w, "overlay output disabled", http.StatusForbidden)
		return
	}

	style := render.DefaultStyle()
	for _, candidate := range []string{r.FormValue("color"), s.overlayColor} {
		if col := utils.ParseHexColor(candidate); col != nil {
			style.ContourColor = col
			break
		}
	}
	for _, candidate := range []string{r.FormValue("start_color"), s.startColor} {
		if col := utils.ParseHexColor(candidate); col != nil {
			style.StartColor = col
			break
		}
	}
	style.Label = strings.TrimSpace(r.FormValue("label"))

	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, render.Overlay(img, c, style))
}
